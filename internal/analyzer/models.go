package analyzer

import (
	"github.com/anime-shed/design-inspector-go/pkg/models"
)

// Report types are aliases to the shared models so callers outside the
// analyzer never need to import both packages.
type (
	Report              = models.Report
	ColorAnalysis       = models.ColorAnalysis
	CompositionAnalysis = models.CompositionAnalysis
	DominantColor       = models.DominantColor
	ChannelStat         = models.ChannelStat
	ImageMetadata       = models.ImageMetadata
)

// MaxChannels is the largest channel list accepted (RGBA).
const MaxChannels = 4

// channelNames labels channels by position.
var channelNames = [MaxChannels]string{"red", "green", "blue", "alpha"}
