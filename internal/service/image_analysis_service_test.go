package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/anime-shed/design-inspector-go/internal/analyzer"
	apperrors "github.com/anime-shed/design-inspector-go/internal/errors"
	"github.com/anime-shed/design-inspector-go/internal/imagestats"
	"github.com/anime-shed/design-inspector-go/internal/logger"
	"github.com/anime-shed/design-inspector-go/internal/observer"
	"github.com/anime-shed/design-inspector-go/internal/repository"
	"github.com/anime-shed/design-inspector-go/internal/storage"
	"github.com/anime-shed/design-inspector-go/internal/workerpool"
	"github.com/anime-shed/design-inspector-go/pkg/models"
	"github.com/anime-shed/design-inspector-go/pkg/validation"
)

func redPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(160, 90, color.NRGBA{R: 220, G: 20, B: 20, A: 255})
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeRepo struct {
	data []byte
	err  error
}

func (r *fakeRepo) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	return r.data, r.err
}

func (r *fakeRepo) ValidateImageURL(imageURL string) error {
	if imageURL == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}
	return nil
}

type providerFunc func(ctx context.Context, r io.Reader) (*imagestats.Result, error)

func (f providerFunc) Compute(ctx context.Context, r io.Reader) (*imagestats.Result, error) {
	return f(ctx, r)
}

type harness struct {
	svc     DesignAnalysisService
	metrics *observer.MetricsObserver
	events  *observer.EventPublisher
	pool    *workerpool.WorkerPool
}

func newHarness(t *testing.T, repo repository.ImageRepository, provider imagestats.Provider, timeouts Timeouts) *harness {
	t.Helper()
	pool := workerpool.New(2)
	pool.Start()
	t.Cleanup(pool.Close)

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(metrics)

	if provider == nil {
		provider = imagestats.NewProvider(imagestats.DefaultOptions())
	}
	if repo == nil {
		repo = &fakeRepo{}
	}

	svc := NewDesignAnalysisService(
		repo,
		provider,
		analyzer.NewEngine(analyzer.DefaultOptions()),
		validation.NewUploadValidator(1<<20),
		pool,
		events,
		timeouts,
	)
	return &harness{svc: svc, metrics: metrics, events: events, pool: pool}
}

func defaultTimeouts() Timeouts {
	return Timeouts{Fetch: time.Second, Analysis: 5 * time.Second}
}

func TestAnalyzeUpload_Success(t *testing.T) {
	h := newHarness(t, nil, nil, defaultTimeouts())
	ctx := logger.ContextWithRequestID(context.Background(), "req-1")

	report, err := h.svc.AnalyzeUpload(ctx, "poster.png", redPNG(t), analyzer.DefaultOptions())
	require.NoError(t, err)

	require.Len(t, report.ColorAnalysis.DominantColors, 3)
	assert.InDelta(t, 220, report.ColorAnalysis.DominantColors[0].Mean, 1e-9)
	assert.InDelta(t, 16.0/9.0, report.CompositionAnalysis.AspectRatio, 1e-9)
	assert.Equal(t, 0.0, report.CompositionAnalysis.Contrast)
	// dominant red, uneven balance, flat contrast
	assert.Len(t, report.Recommendations, 3)

	h.events.Flush()
	snap := h.metrics.GetMetrics()
	assert.Equal(t, int64(1), snap.TotalAnalyses)
	assert.Equal(t, int64(1), snap.SuccessfulAnalyses)
	assert.Equal(t, int64(3), snap.RecommendationsTotal)
}

func TestAnalyzeUpload_Locale(t *testing.T) {
	h := newHarness(t, nil, nil, defaultTimeouts())
	opts := analyzer.DefaultOptions().WithLocale(language.Turkish)

	report, err := h.svc.AnalyzeUpload(context.Background(), "poster.png", redPNG(t), opts)
	require.NoError(t, err)
	assert.Equal(t, "Renk dağılımını daha dengeli hale getirmeyi düşünebilirsiniz.", report.Recommendations[0])
}

func TestAnalyzeUpload_ErrorMapping(t *testing.T) {
	valid := redPNG(t)

	testCases := []struct {
		name     string
		data     []byte
		provider imagestats.Provider
		timeouts Timeouts
		wantType apperrors.ErrorType
	}{
		{
			name:     "Not an image",
			data:     []byte("hello, this is text"),
			wantType: apperrors.ErrorTypeUnsupportedMedia,
		},
		{
			name:     "Corrupt image",
			data:     valid[:len(valid)/2],
			wantType: apperrors.ErrorTypeProcessing,
		},
		{
			name: "Invalid statistics",
			data: valid,
			provider: providerFunc(func(ctx context.Context, r io.Reader) (*imagestats.Result, error) {
				return &imagestats.Result{
					Channels: []models.ChannelStat{{Mean: 10, Std: -1}},
					Metadata: models.ImageMetadata{Width: 1, Height: 1},
				}, nil
			}),
			wantType: apperrors.ErrorTypeValidation,
		},
		{
			name: "Pixel limit",
			data: valid,
			provider: providerFunc(func(ctx context.Context, r io.Reader) (*imagestats.Result, error) {
				return nil, fmt.Errorf("%w: 100000x100000", imagestats.ErrTooManyPixels)
			}),
			wantType: apperrors.ErrorTypeTooLarge,
		},
		{
			name: "Analysis timeout",
			data: valid,
			provider: providerFunc(func(ctx context.Context, r io.Reader) (*imagestats.Result, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}),
			timeouts: Timeouts{Fetch: time.Second, Analysis: 20 * time.Millisecond},
			wantType: apperrors.ErrorTypeTimeout,
		},
		{
			name: "Unexpected failure",
			data: valid,
			provider: providerFunc(func(ctx context.Context, r io.Reader) (*imagestats.Result, error) {
				return nil, errors.New("disk on fire")
			}),
			wantType: apperrors.ErrorTypeInternal,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			timeouts := tc.timeouts
			if timeouts.Analysis == 0 {
				timeouts = defaultTimeouts()
			}
			h := newHarness(t, nil, tc.provider, timeouts)

			report, err := h.svc.AnalyzeUpload(context.Background(), "design.png", tc.data, analyzer.DefaultOptions())
			assert.Nil(t, report)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tc.wantType), "got %v", err)

			h.events.Flush()
			snap := h.metrics.GetMetrics()
			assert.Equal(t, int64(1), snap.FailedAnalyses)
			assert.Equal(t, int64(1), snap.FailuresByType[string(tc.wantType)])
		})
	}
}

func TestAnalyzeURL(t *testing.T) {
	valid := redPNG(t)

	testCases := []struct {
		name     string
		url      string
		repo     *fakeRepo
		wantType apperrors.ErrorType
	}{
		{"Success", "https://cdn.example.com/a.png", &fakeRepo{data: valid}, ""},
		{"Empty URL", "", &fakeRepo{data: valid}, apperrors.ErrorTypeValidation},
		{"Network failure", "https://cdn.example.com/a.png", &fakeRepo{err: errors.New("connection refused")}, apperrors.ErrorTypeNetwork},
		{"Too large", "https://cdn.example.com/a.png", &fakeRepo{err: storage.ErrBodyTooLarge}, apperrors.ErrorTypeTooLarge},
		{"Not found", "azblob://designs/a.png", &fakeRepo{err: storage.ErrSourceNotFound}, apperrors.ErrorTypeNotFound},
		{"Fetch deadline", "https://cdn.example.com/a.png", &fakeRepo{err: context.DeadlineExceeded}, apperrors.ErrorTypeTimeout},
		{"Unconfigured source", "azblob://designs/a.png", &fakeRepo{err: repository.ErrUnsupportedSource}, apperrors.ErrorTypeValidation},
		{"Remote HTML page", "https://example.com/", &fakeRepo{data: []byte("<html><body>hi</body></html>")}, apperrors.ErrorTypeUnsupportedMedia},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.repo, nil, defaultTimeouts())

			report, err := h.svc.AnalyzeURL(context.Background(), tc.url, analyzer.DefaultOptions())
			if tc.wantType == "" {
				require.NoError(t, err)
				assert.NotNil(t, report)
				h.events.Flush()
				assert.Equal(t, int64(1), h.metrics.GetMetrics().ImagesFetched)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tc.wantType), "got %v", err)
		})
	}
}

func TestAnalyzeUpload_PoolClosed(t *testing.T) {
	h := newHarness(t, nil, nil, defaultTimeouts())
	h.pool.Close()

	_, err := h.svc.AnalyzeUpload(context.Background(), "poster.png", redPNG(t), analyzer.DefaultOptions())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal), "got %v", err)
}
