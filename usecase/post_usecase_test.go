package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"auto-post/domain/model"
	"auto-post/domain/repository"
	"auto-post/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ListDue(ctx context.Context, date time.Time) ([]model.WorkItem, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkItem), args.Error(1)
}

func (m *MockLedger) List(ctx context.Context, filter model.WorkItemFilter) ([]model.WorkItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkItem), args.Error(1)
}

func (m *MockLedger) GetByID(ctx context.Context, id string) (*model.WorkItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkItem), args.Error(1)
}

func (m *MockLedger) RecordSuccess(ctx context.Context, itemID string, platform model.Platform, postID string) error {
	args := m.Called(ctx, itemID, platform, postID)
	return args.Error(0)
}

func (m *MockLedger) RecordError(ctx context.Context, itemID string, message string) error {
	args := m.Called(ctx, itemID, message)
	return args.Error(0)
}

type MockMediaUsecase struct {
	mock.Mock
}

func (m *MockMediaUsecase) Fetch(ctx context.Context, folderID string) ([]model.MediaAsset, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MediaAsset), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
	platform model.Platform
}

func (m *MockPublisher) Platform() model.Platform { return m.platform }

func (m *MockPublisher) Publish(ctx context.Context, assets []model.MediaAsset, caption string) (string, error) {
	args := m.Called(ctx, assets, caption)
	return args.String(0), args.Error(1)
}

type MockRunNotifier struct {
	mock.Mock
}

func (m *MockRunNotifier) Notify(ctx context.Context, date time.Time, stats model.RunStatistics) error {
	args := m.Called(ctx, date, stats)
	return args.Error(0)
}

func noSleep(time.Duration) {}

var testDate = time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

func dueItem(id string) model.WorkItem {
	return model.WorkItem{ID: id, WorkName: "ふくろう", FolderID: "folder-" + id}
}

func testAssets() []model.MediaAsset {
	return []model.MediaAsset{{Content: []byte("img"), Filename: "01.jpg", MimeType: "image/jpeg"}}
}

func newPostUsecase(ledger *MockLedger, media *MockMediaUsecase, ig, x *MockPublisher, notifier *MockRunNotifier) *usecase.PostUsecase {
	var n repository.IRunNotifier
	if notifier != nil {
		n = notifier
	}
	u := usecase.NewPostUsecase(
		ledger,
		media,
		[]repository.IPublisher{ig, x},
		n,
		"#tag1 #tag2",
		0,
		testLogger(),
	)
	return u.WithSleep(noSleep)
}

func TestPostUsecase_SuccessBothLegs(t *testing.T) {
	ledger := new(MockLedger)
	media := new(MockMediaUsecase)
	ig := &MockPublisher{platform: model.PlatformInstagram}
	x := &MockPublisher{platform: model.PlatformX}

	item := dueItem("1")
	ledger.On("ListDue", mock.Anything, testDate).Return([]model.WorkItem{item}, nil)
	media.On("Fetch", mock.Anything, "folder-1").Return(testAssets(), nil)
	ig.On("Publish", mock.Anything, mock.Anything, "ふくろうの木彫りです！\n\n#tag1 #tag2").Return("ig-123", nil)
	x.On("Publish", mock.Anything, mock.Anything, "ふくろうの木彫りです！\n\n#tag1 #tag2").Return("x-456", nil)
	ledger.On("RecordSuccess", mock.Anything, "1", model.PlatformInstagram, "ig-123").Return(nil)
	ledger.On("RecordSuccess", mock.Anything, "1", model.PlatformX, "x-456").Return(nil)

	stats := newPostUsecase(ledger, media, ig, x, nil).RunDailyPost(context.Background(), testDate)

	assert.Equal(t, model.RunStatistics{Processed: 1, InstagramSuccess: 1, XSuccess: 1}, stats)
	ledger.AssertExpectations(t)
}

func TestPostUsecase_SecondRunIsIdempotent(t *testing.T) {
	ledger := new(MockLedger)
	media := new(MockMediaUsecase)
	ig := &MockPublisher{platform: model.PlatformInstagram}
	x := &MockPublisher{platform: model.PlatformX}

	// Everything already posted on both platforms: the due query would normally
	// filter these out, but even when returned no publisher is invoked.
	item := dueItem("1")
	item.IGPosted = true
	item.XPosted = true
	ledger.On("ListDue", mock.Anything, testDate).Return([]model.WorkItem{item}, nil)
	media.On("Fetch", mock.Anything, "folder-1").Return(testAssets(), nil)

	stats := newPostUsecase(ledger, media, ig, x, nil).RunDailyPost(context.Background(), testDate)

	assert.Equal(t, model.RunStatistics{Processed: 1}, stats)
	ig.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	x.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostUsecase_InstagramFailureDoesNotBlockX(t *testing.T) {
	ledger := new(MockLedger)
	media := new(MockMediaUsecase)
	ig := &MockPublisher{platform: model.PlatformInstagram}
	x := &MockPublisher{platform: model.PlatformX}

	item := dueItem("1")
	ledger.On("ListDue", mock.Anything, testDate).Return([]model.WorkItem{item}, nil)
	media.On("Fetch", mock.Anything, "folder-1").Return(testAssets(), nil)
	ig.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Return("", &model.PublishError{Platform: model.PlatformInstagram, Err: assert.AnError})
	x.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("x-456", nil)
	ledger.On("RecordError", mock.Anything, "1", mock.Anything).Return(nil)
	ledger.On("RecordSuccess", mock.Anything, "1", model.PlatformX, "x-456").Return(nil)

	stats := newPostUsecase(ledger, media, ig, x, nil).RunDailyPost(context.Background(), testDate)

	assert.Equal(t, model.RunStatistics{Processed: 1, XSuccess: 1, Errors: 1}, stats)
	x.AssertCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	ledger.AssertCalled(t, "RecordSuccess", mock.Anything, "1", model.PlatformX, "x-456")
}

func TestPostUsecase_MediaFailureIsFatalForItemOnly(t *testing.T) {
	ledger := new(MockLedger)
	media := new(MockMediaUsecase)
	ig := &MockPublisher{platform: model.PlatformInstagram}
	x := &MockPublisher{platform: model.PlatformX}

	broken := dueItem("1")
	healthy := dueItem("2")
	ledger.On("ListDue", mock.Anything, testDate).Return([]model.WorkItem{broken, healthy}, nil)
	media.On("Fetch", mock.Anything, "folder-1").Return(nil, &model.EmptyMediaError{Ref: "folder-1"})
	media.On("Fetch", mock.Anything, "folder-2").Return(testAssets(), nil)
	ledger.On("RecordError", mock.Anything, "1", mock.Anything).Return(nil)
	ig.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("ig-2", nil)
	x.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("x-2", nil)
	ledger.On("RecordSuccess", mock.Anything, "2", model.PlatformInstagram, "ig-2").Return(nil)
	ledger.On("RecordSuccess", mock.Anything, "2", model.PlatformX, "x-2").Return(nil)

	stats := newPostUsecase(ledger, media, ig, x, nil).RunDailyPost(context.Background(), testDate)

	// The broken item is errored but not processed; the run continues.
	assert.Equal(t, model.RunStatistics{Processed: 1, InstagramSuccess: 1, XSuccess: 1, Errors: 1}, stats)
	ig.AssertNumberOfCalls(t, "Publish", 1)
}

// panickingPublisher simulates a publisher hitting corrupted state instead of
// returning an error.
type panickingPublisher struct {
	platform model.Platform
	calls    int
}

func (p *panickingPublisher) Platform() model.Platform { return p.platform }

func (p *panickingPublisher) Publish(context.Context, []model.MediaAsset, string) (string, error) {
	p.calls++
	panic("connection state corrupted")
}

func TestPostUsecase_PublisherPanicIsContained(t *testing.T) {
	ledger := new(MockLedger)
	media := new(MockMediaUsecase)
	ig := &panickingPublisher{platform: model.PlatformInstagram}
	x := &MockPublisher{platform: model.PlatformX}

	ledger.On("ListDue", mock.Anything, testDate).
		Return([]model.WorkItem{dueItem("1"), dueItem("2")}, nil)
	media.On("Fetch", mock.Anything, mock.Anything).Return(testAssets(), nil)
	ledger.On("RecordError", mock.Anything, mock.Anything, mock.MatchedBy(func(msg string) bool {
		return strings.HasPrefix(msg, "Processing error:")
	})).Return(nil)

	u := usecase.NewPostUsecase(
		ledger,
		media,
		[]repository.IPublisher{ig, x},
		nil,
		"#tag1 #tag2",
		0,
		testLogger(),
	).WithSleep(noSleep)

	stats := u.RunDailyPost(context.Background(), testDate)

	// Both items panicked: neither counts as processed, each is errored, and
	// the run still reaches the second item.
	assert.Equal(t, model.RunStatistics{Errors: 2}, stats)
	assert.Equal(t, 2, ig.calls)
	x.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	ledger.AssertNumberOfCalls(t, "RecordError", 2)
}

func TestPostUsecase_ItemDelayOnlyBetweenItems(t *testing.T) {
	ledger := new(MockLedger)
	media := new(MockMediaUsecase)
	ig := &MockPublisher{platform: model.PlatformInstagram}
	x := &MockPublisher{platform: model.PlatformX}

	ledger.On("ListDue", mock.Anything, testDate).
		Return([]model.WorkItem{dueItem("1"), dueItem("2"), dueItem("3")}, nil)
	media.On("Fetch", mock.Anything, mock.Anything).Return(testAssets(), nil)
	ig.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("ig-1", nil)
	x.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("x-1", nil)
	ledger.On("RecordSuccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var sleeps []time.Duration
	u := usecase.NewPostUsecase(
		ledger,
		media,
		[]repository.IPublisher{ig, x},
		nil,
		"#tag1 #tag2",
		2*time.Second,
		testLogger(),
	).WithSleep(func(d time.Duration) { sleeps = append(sleeps, d) })

	u.RunDailyPost(context.Background(), testDate)

	// Three items pace twice; no tail delay after the last one.
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeps)
}

func TestPostUsecase_LedgerWriteFailureDoesNotAbortRun(t *testing.T) {
	ledger := new(MockLedger)
	media := new(MockMediaUsecase)
	ig := &MockPublisher{platform: model.PlatformInstagram}
	x := &MockPublisher{platform: model.PlatformX}

	item := dueItem("1")
	ledger.On("ListDue", mock.Anything, testDate).Return([]model.WorkItem{item}, nil)
	media.On("Fetch", mock.Anything, "folder-1").Return(testAssets(), nil)
	ig.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("ig-1", nil)
	x.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("x-1", nil)
	// Success happened remotely but the ledger write fails: logged, not fatal.
	ledger.On("RecordSuccess", mock.Anything, "1", model.PlatformInstagram, "ig-1").Return(assert.AnError)
	ledger.On("RecordSuccess", mock.Anything, "1", model.PlatformX, "x-1").Return(nil)

	stats := newPostUsecase(ledger, media, ig, x, nil).RunDailyPost(context.Background(), testDate)

	assert.Equal(t, model.RunStatistics{Processed: 1, InstagramSuccess: 1, XSuccess: 1}, stats)
}

func TestPostUsecase_NotifierReceivesStats(t *testing.T) {
	ledger := new(MockLedger)
	media := new(MockMediaUsecase)
	ig := &MockPublisher{platform: model.PlatformInstagram}
	x := &MockPublisher{platform: model.PlatformX}
	notifier := new(MockRunNotifier)

	ledger.On("ListDue", mock.Anything, testDate).Return([]model.WorkItem{}, nil)
	notifier.On("Notify", mock.Anything, testDate, model.RunStatistics{}).Return(nil)

	stats := newPostUsecase(ledger, media, ig, x, notifier).RunDailyPost(context.Background(), testDate)

	assert.Equal(t, model.RunStatistics{}, stats)
	notifier.AssertExpectations(t)
}

func TestPostUsecase_TestPost_SinglePlatform(t *testing.T) {
	ledger := new(MockLedger)
	media := new(MockMediaUsecase)
	ig := &MockPublisher{platform: model.PlatformInstagram}
	x := &MockPublisher{platform: model.PlatformX}

	item := dueItem("1")
	ledger.On("GetByID", mock.Anything, "1").Return(&item, nil)
	media.On("Fetch", mock.Anything, "folder-1").Return(testAssets(), nil)
	x.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("x-99", nil)

	results, err := newPostUsecase(ledger, media, ig, x, nil).
		TestPost(context.Background(), "1", []model.Platform{model.PlatformX})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.PlatformX, results[0].Platform)
	assert.Equal(t, "x-99", results[0].PostID)
	ig.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	// Test posts never touch the ledger status fields.
	ledger.AssertNotCalled(t, "RecordSuccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostUsecase_TestPost_UnknownItem(t *testing.T) {
	ledger := new(MockLedger)
	media := new(MockMediaUsecase)
	ig := &MockPublisher{platform: model.PlatformInstagram}
	x := &MockPublisher{platform: model.PlatformX}

	ledger.On("GetByID", mock.Anything, "missing").Return(nil, nil)

	_, err := newPostUsecase(ledger, media, ig, x, nil).
		TestPost(context.Background(), "missing", []model.Platform{model.PlatformInstagram})

	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
}
