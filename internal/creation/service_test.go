package creation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/ai-studio/internal/ai"
	"github.com/suPer8Hu/ai-studio/internal/storage"
	"gorm.io/gorm"
)

type fakeText struct {
	calls      int
	lastPrompt string
	lastMax    int
	reply      string
	err        error
}

func (f *fakeText) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastMax = maxTokens
	return f.reply, f.err
}

type fakeImages struct {
	calls int
	err   error
}

func (f *fakeImages) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png"), nil
}

type fakeStore struct {
	calls      int
	lastObject string
	lastBody   string
	url        string
	err        error
}

func (f *fakeStore) UploadDataURI(ctx context.Context, dataURI string) (string, error) {
	f.calls++
	f.lastBody = dataURI
	return f.url, f.err
}

func (f *fakeStore) RemoveBackground(ctx context.Context, filename string, image io.Reader) (string, error) {
	f.calls++
	b, _ := io.ReadAll(image)
	f.lastBody = string(b)
	return f.url, f.err
}

func (f *fakeStore) RemoveObject(ctx context.Context, filename string, image io.Reader, object string) (string, error) {
	f.calls++
	f.lastObject = object
	return f.url, f.err
}

type fakeUsage struct {
	mu    sync.Mutex
	count map[string]int64
	err   error
}

func newFakeUsage() *fakeUsage { return &fakeUsage{count: map[string]int64{}} }

func (f *fakeUsage) FreeUsage(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count[userID], f.err
}

func (f *fakeUsage) IncrFreeUsage(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count[userID]++
	return f.count[userID], nil
}

type fakeEvents struct {
	published []*Creation
	err       error
}

func (f *fakeEvents) PublishCreation(ctx context.Context, c *Creation) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, c)
	return nil
}

type fakeFeed struct {
	items []*Creation
}

func (f *fakeFeed) PushPublished(ctx context.Context, c *Creation) error {
	f.items = append(f.items, c)
	return nil
}

type nopFile struct{ *bytes.Reader }

func (nopFile) Close() error { return nil }

func upload(name string, data []byte) *Upload {
	return &Upload{
		Filename: name,
		Size:     int64(len(data)),
		Open:     func() (File, error) { return nopFile{bytes.NewReader(data)}, nil },
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "=", "_").Replace(t.Name())
	db, err := gorm.Open(gormsqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Creation{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

type harness struct {
	db      *gorm.DB
	svc     *Service
	text    *fakeText
	images  *fakeImages
	store   *fakeStore
	usage   *fakeUsage
	events  *fakeEvents
	feed    *fakeFeed
	extract int
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		db:     openTestDB(t),
		text:   &fakeText{reply: "generated text"},
		images: &fakeImages{},
		store:  &fakeStore{url: "https://cdn.test/img.png"},
		usage:  newFakeUsage(),
		events: &fakeEvents{},
		feed:   &fakeFeed{},
	}
	h.svc = NewService(Deps{
		Repo:   NewRepo(h.db),
		Usage:  h.usage,
		Text:   h.text,
		Images: h.images,
		Store:  h.store,
		Extract: func(r io.ReaderAt, size int64) (string, error) {
			h.extract++
			return "Jane Doe, Go engineer", nil
		},
		Events:    h.events,
		Feed:      h.feed,
		FreeLimit: 10,
	})
	return h
}

func (h *harness) creations(t *testing.T) []Creation {
	t.Helper()
	var out []Creation
	require.NoError(t, h.db.Order("created_at ASC").Find(&out).Error)
	return out
}

var (
	free    = Caller{UserID: "user_free", Plan: PlanFree}
	premium = Caller{UserID: "user_premium", Plan: PlanPremium}
)

func TestRun_Unauthenticated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	results := []Result{
		h.svc.GenerateArticle(ctx, Caller{}, "go", 800),
		h.svc.GenerateBlogTitle(ctx, Caller{}, "go"),
		h.svc.GenerateImage(ctx, Caller{}, "go", true),
		h.svc.RemoveBackground(ctx, Caller{}, upload("a.png", []byte("x"))),
		h.svc.RemoveObject(ctx, Caller{}, upload("a.png", []byte("x")), "car"),
		h.svc.ReviewResume(ctx, Caller{}, upload("cv.pdf", []byte("x"))),
	}
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Equal(t, MsgUnauthenticated, r.Message)
	}
	assert.Zero(t, h.text.calls+h.images.calls+h.store.calls)
	assert.Empty(t, h.creations(t))
	assert.Empty(t, h.usage.count)
}

func TestGenerateArticle_FreeSuccessIncrementsUsage(t *testing.T) {
	h := newHarness(t)

	res := h.svc.GenerateArticle(context.Background(), free, "Write an article about Go in 500 words", 1200)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "generated text", res.Content)
	assert.Equal(t, 1200, h.text.lastMax)

	recs := h.creations(t)
	require.Len(t, recs, 1)
	assert.Equal(t, KindArticle, recs[0].Type)
	assert.Equal(t, "user_free", recs[0].UserID)
	assert.Equal(t, "Write an article about Go in 500 words", recs[0].Prompt)
	assert.False(t, recs[0].Publish)
	assert.Len(t, recs[0].ID, 26)
	assert.Equal(t, int64(1), h.usage.count["user_free"])
	require.Len(t, h.events.published, 1)
	assert.Equal(t, recs[0].ID, h.events.published[0].ID)
}

func TestGenerateArticle_LengthBounds(t *testing.T) {
	h := newHarness(t)

	h.svc.GenerateArticle(context.Background(), premium, "x", 0)
	assert.Equal(t, defaultArticleTokens, h.text.lastMax)

	h.svc.GenerateArticle(context.Background(), premium, "x", 100000)
	assert.Equal(t, maxArticleTokens, h.text.lastMax)
}

func TestQuotaGated_LimitReached(t *testing.T) {
	h := newHarness(t)
	h.usage.count["user_free"] = 10

	for _, res := range []Result{
		h.svc.GenerateArticle(context.Background(), free, "go", 800),
		h.svc.GenerateBlogTitle(context.Background(), free, "go"),
	} {
		assert.Equal(t, Result{Success: false, Message: "Limit reached. Upgrade to continue."}, res)
	}
	assert.Zero(t, h.text.calls)
	assert.Empty(t, h.creations(t))
	assert.Equal(t, int64(10), h.usage.count["user_free"])
}

func TestQuotaGated_BelowLimitAllowed(t *testing.T) {
	h := newHarness(t)
	h.usage.count["user_free"] = 9

	res := h.svc.GenerateBlogTitle(context.Background(), free, "golang")
	require.True(t, res.Success)
	assert.Equal(t, blogTitleTokens, h.text.lastMax)
	assert.Equal(t, int64(10), h.usage.count["user_free"])

	res = h.svc.GenerateBlogTitle(context.Background(), free, "golang")
	assert.Equal(t, MsgLimitReached, res.Message)
}

func TestQuotaGated_PremiumNotCountedOrLimited(t *testing.T) {
	h := newHarness(t)
	h.usage.count["user_premium"] = 50

	res := h.svc.GenerateArticle(context.Background(), premium, "go", 800)
	require.True(t, res.Success)
	assert.Equal(t, int64(50), h.usage.count["user_premium"])
}

func TestQuotaGated_UsageStoreDown(t *testing.T) {
	h := newHarness(t)
	h.usage.err = errors.New("redis: connection refused")

	res := h.svc.GenerateArticle(context.Background(), free, "go", 800)
	assert.False(t, res.Success)
	assert.Equal(t, "Failed to generate article. Please try again.", res.Message)
	assert.Zero(t, h.text.calls)
}

func TestPremiumOnly_RejectsFreeRegardlessOfInput(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	results := []Result{
		h.svc.GenerateImage(ctx, free, "", false),
		h.svc.GenerateImage(ctx, free, "a cat", true),
		h.svc.RemoveBackground(ctx, free, nil),
		h.svc.RemoveObject(ctx, free, nil, "two words"),
		h.svc.ReviewResume(ctx, free, upload("cv.pdf", make([]byte, MaxResumeBytes+1))),
	}
	for _, r := range results {
		assert.Equal(t, Result{Success: false, Message: MsgPremiumOnly}, r)
	}
	assert.Zero(t, h.images.calls+h.store.calls+h.extract)
	assert.Empty(t, h.creations(t))
}

func TestValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Equal(t, MsgPromptRequired, h.svc.GenerateArticle(ctx, premium, "   ", 800).Message)
	assert.Equal(t, MsgPromptRequired, h.svc.GenerateImage(ctx, premium, "", false).Message)
	assert.Equal(t, MsgImageRequired, h.svc.RemoveBackground(ctx, premium, nil).Message)
	assert.Equal(t, MsgImageRequired, h.svc.RemoveObject(ctx, premium, upload("a.png", nil), "car").Message)
	assert.Equal(t, MsgObjectRequired, h.svc.RemoveObject(ctx, premium, upload("a.png", []byte("x")), " ").Message)
	assert.Equal(t, MsgSingleObject, h.svc.RemoveObject(ctx, premium, upload("a.png", []byte("x")), "red car").Message)
	for _, object := range []string{"car,e_grayscale", "car/w_10", "car,l_text:Arial_80:HACKED", "car.png", "car?x=1"} {
		assert.Equal(t, MsgSingleObject, h.svc.RemoveObject(ctx, premium, upload("a.png", []byte("x")), object).Message, object)
	}
	assert.Equal(t, MsgResumeRequired, h.svc.ReviewResume(ctx, premium, nil).Message)
	assert.Equal(t, MsgResumeNotPDF, h.svc.ReviewResume(ctx, premium, upload("cv.docx", []byte("x"))).Message)

	assert.Zero(t, h.text.calls+h.images.calls+h.store.calls)
	assert.Empty(t, h.creations(t))
}

func TestReviewResume_TooLargeRejectedBeforeExtraction(t *testing.T) {
	h := newHarness(t)

	res := h.svc.ReviewResume(context.Background(), premium, upload("cv.pdf", make([]byte, MaxResumeBytes+1)))
	assert.Equal(t, Result{Success: false, Message: "Resume size exceeds allowed size (5MB)."}, res)
	assert.Zero(t, h.extract)
	assert.Zero(t, h.text.calls)
}

func TestOversizedBody_RejectedAfterPlanCheck(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cut := &Upload{Filename: "image", TooLarge: true}

	assert.Equal(t, MsgPremiumOnly, h.svc.RemoveBackground(ctx, free, cut).Message)
	assert.Equal(t, MsgImageTooLarge, h.svc.RemoveBackground(ctx, premium, cut).Message)
	assert.Equal(t, MsgImageTooLarge, h.svc.RemoveObject(ctx, premium, cut, "car").Message)
	assert.Equal(t, MsgResumeTooLarge, h.svc.ReviewResume(ctx, premium, &Upload{Filename: "resume", TooLarge: true}).Message)

	assert.Zero(t, h.extract)
	assert.Zero(t, h.store.calls)
	assert.Empty(t, h.creations(t))
}

func TestReviewResume_Success(t *testing.T) {
	h := newHarness(t)
	h.text.reply = "Strong Go background."

	res := h.svc.ReviewResume(context.Background(), premium, upload("CV.PDF", []byte("%PDF-1.4")))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Strong Go background.", res.Content)
	assert.Equal(t, 1, h.extract)
	assert.Equal(t, resumeReviewTokens, h.text.lastMax)
	assert.Contains(t, h.text.lastPrompt, "Jane Doe, Go engineer")

	recs := h.creations(t)
	require.Len(t, recs, 1)
	assert.Equal(t, KindResumeReview, recs[0].Type)
	assert.Equal(t, "Review the uploaded Resume", recs[0].Prompt)
}

func TestGenerateImage_Success(t *testing.T) {
	for _, publish := range []bool{true, false} {
		t.Run(fmt.Sprintf("publish=%v", publish), func(t *testing.T) {
			h := newHarness(t)

			res := h.svc.GenerateImage(context.Background(), premium, "a fox in the Style Anime style", publish)
			require.True(t, res.Success, res.Message)
			assert.Equal(t, "https://cdn.test/img.png", res.Content)
			assert.Equal(t, storage.PNGDataURI([]byte("png")), h.store.lastBody)

			recs := h.creations(t)
			require.Len(t, recs, 1)
			assert.Equal(t, KindImage, recs[0].Type)
			assert.Equal(t, "https://cdn.test/img.png", recs[0].Content)
			assert.Equal(t, publish, recs[0].Publish)
		})
	}
}

func TestGenerateImage_UpstreamFaults(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", &ai.StatusError{Provider: "clipdrop", StatusCode: 401, Body: "bad key sk-123"}, "Invalid API key for the AI service."},
		{"payment", &ai.StatusError{Provider: "clipdrop", StatusCode: 402}, "AI service quota exceeded."},
		{"rate limited", &ai.StatusError{Provider: "clipdrop", StatusCode: 429}, "Too many requests. Please try again later."},
		{"timeout", fmt.Errorf("clipdrop: %w", context.DeadlineExceeded), "Request timeout. Please try again."},
		{"other status", &ai.StatusError{Provider: "clipdrop", StatusCode: 500, Body: "internal"}, "Failed to generate image. Please try again."},
		{"other", errors.New("dial tcp: connection refused"), "Failed to generate image. Please try again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.images.err = tc.err

			res := h.svc.GenerateImage(context.Background(), premium, "fox", false)
			assert.Equal(t, Result{Success: false, Message: tc.want}, res)
			assert.Zero(t, h.store.calls)
			assert.Empty(t, h.creations(t))
		})
	}
}

func TestGenerateImage_StorageFailure(t *testing.T) {
	h := newHarness(t)
	h.store.err = fmt.Errorf("%w: cloudinary: invalid signature", storage.ErrUpload)

	res := h.svc.GenerateImage(context.Background(), premium, "fox", false)
	assert.Equal(t, "Image upload failed. Please try again.", res.Message)
	assert.Empty(t, h.creations(t))
}

func TestTimeoutMessageIsDistinct(t *testing.T) {
	h := newHarness(t)
	h.text.err = context.DeadlineExceeded

	res := h.svc.GenerateArticle(context.Background(), free, "go", 800)
	assert.False(t, res.Success)
	assert.NotEqual(t, "Failed to generate article. Please try again.", res.Message)
	assert.NotEqual(t, MsgLimitReached, res.Message)
	assert.NotEqual(t, MsgPremiumOnly, res.Message)
	assert.Contains(t, strings.ToLower(res.Message), "timeout")
	assert.Zero(t, h.usage.count["user_free"])
}

func TestTextGeneration_InvalidResponse(t *testing.T) {
	h := newHarness(t)
	h.text.err = ai.ErrInvalidResponse

	res := h.svc.GenerateBlogTitle(context.Background(), premium, "go")
	assert.Equal(t, faultMessages[FaultInvalidResponse], res.Message)
}

func TestRemoveBackground_Success(t *testing.T) {
	h := newHarness(t)

	res := h.svc.RemoveBackground(context.Background(), premium, upload("a.png", []byte("pixels")))
	require.True(t, res.Success)
	assert.Equal(t, "pixels", h.store.lastBody)

	recs := h.creations(t)
	require.Len(t, recs, 1)
	assert.Equal(t, KindImage, recs[0].Type)
	assert.Equal(t, "Remove background from image", recs[0].Prompt)
	assert.False(t, recs[0].Publish)
}

func TestRemoveObject_Success(t *testing.T) {
	h := newHarness(t)
	h.store.url = "https://cdn.test/e_gen_remove:prompt_car/a.png"

	res := h.svc.RemoveObject(context.Background(), premium, upload("a.png", []byte("pixels")), " car ")
	require.True(t, res.Success)
	assert.Equal(t, "car", h.store.lastObject)

	recs := h.creations(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "Removed car from image", recs[0].Prompt)
	assert.Equal(t, h.store.url, recs[0].Content)
}

func TestRemoveObject_AcceptsSingleWords(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, object := range []string{"car", "traffic-cone", "lamp_post", "Café", "R2D2"} {
		res := h.svc.RemoveObject(ctx, premium, upload("a.png", []byte("x")), object)
		assert.True(t, res.Success, object)
		assert.Equal(t, object, h.store.lastObject)
	}
}

func TestRun_InsertFailureIsGeneric(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.Migrator().DropTable(&Creation{}))

	res := h.svc.GenerateArticle(context.Background(), free, "go", 800)
	assert.Equal(t, Result{Success: false, Message: "Failed to generate article. Please try again."}, res)
	assert.Zero(t, h.usage.count["user_free"])
	assert.Empty(t, h.events.published)
}

func TestAnnounce_EventDeliveredLeavesFeedToWorker(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.svc.GenerateImage(context.Background(), premium, "cat", true).Success)
	assert.Len(t, h.events.published, 1)
	assert.Empty(t, h.feed.items)
}

func TestAnnounce_PublishFailureWritesFeedDirectly(t *testing.T) {
	h := newHarness(t)
	h.events.err = errors.New("channel closed")
	ctx := context.Background()

	require.True(t, h.svc.GenerateImage(ctx, premium, "cat", true).Success)
	require.True(t, h.svc.GenerateImage(ctx, premium, "dog", false).Success)
	require.True(t, h.svc.GenerateArticle(ctx, premium, "go", 800).Success)

	require.Len(t, h.feed.items, 1)
	assert.Equal(t, "cat", h.feed.items[0].Prompt)
	assert.True(t, h.feed.items[0].Publish)
}

func TestAnnounce_NoBrokerWritesFeedDirectly(t *testing.T) {
	h := newHarness(t)
	h.svc.events = nil

	require.True(t, h.svc.GenerateImage(context.Background(), premium, "cat", true).Success)
	require.Len(t, h.feed.items, 1)
	assert.Equal(t, h.creations(t)[0].ID, h.feed.items[0].ID)
}
