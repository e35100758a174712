package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sociogram/internal/apperrors"
	"sociogram/internal/models"
)

// memCache is an in-process stand-in for the Redis layer with real TTL
// semantics, so read-through and invalidation behavior can be asserted
// against a controllable clock.
type memCache struct {
	mut     sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

type memEntry struct {
	value     string
	expiresAt time.Time
}

func newMemCache(now func() time.Time) *memCache {
	return &memCache{
		entries: make(map[string]memEntry),
		now:     now,
	}
}

func (c *memCache) Get(ctx context.Context, key string) (string, bool) {
	c.mut.Lock()
	defer c.mut.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.mut.Lock()
	defer c.mut.Unlock()
	c.entries[key] = memEntry{value: value, expiresAt: c.now().Add(ttl)}
}

func (c *memCache) Invalidate(ctx context.Context, keys ...string) {
	c.mut.Lock()
	defer c.mut.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}

func (c *memCache) has(key string) bool {
	c.mut.Lock()
	defer c.mut.Unlock()
	_, ok := c.entries[key]
	return ok
}

type recordedEvent struct {
	Event   string
	Payload any
}

type recordingBroadcaster struct {
	mut    sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) Broadcast(event string, payload any) {
	b.mut.Lock()
	defer b.mut.Unlock()
	b.events = append(b.events, recordedEvent{Event: event, Payload: payload})
}

func (b *recordingBroadcaster) recorded() []recordedEvent {
	b.mut.Lock()
	defer b.mut.Unlock()
	return append([]recordedEvent(nil), b.events...)
}

type fakeStorage struct {
	mut      sync.Mutex
	uploads  []string
	deletes  []string
	failNext bool
}

func (s *fakeStorage) UploadMedia(ctx context.Context, ownerID, fileName string, file io.Reader, size int64) (string, string, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	if s.failNext {
		s.failNext = false
		return "", "", fmt.Errorf("object store unavailable")
	}

	objectName := fmt.Sprintf("media/%s/%s", ownerID, fileName)
	s.uploads = append(s.uploads, objectName)
	return objectName, "http://localhost:9000/media/" + objectName, nil
}

func (s *fakeStorage) DeleteMedia(ctx context.Context, objectName string) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	s.deletes = append(s.deletes, objectName)
	return nil
}

func (s *fakeStorage) uploadCount() int {
	s.mut.Lock()
	defer s.mut.Unlock()
	return len(s.uploads)
}

type fakeSongResolver struct {
	videoID string
	err     error
	calls   int
}

func (r *fakeSongResolver) ResolveVideoID(ctx context.Context, name, artist string) (string, error) {
	r.calls++
	return r.videoID, r.err
}

type fakeUserRepo struct {
	mut   sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mut.Lock()
	defer r.mut.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mut.Lock()
	defer r.mut.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user %s", id.Hex())
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mut.Lock()
	defer r.mut.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("user with email %s", email)
}

func (r *fakeUserRepo) GetBriefs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserBrief, error) {
	r.mut.Lock()
	defer r.mut.Unlock()
	briefs := []models.UserBrief{}
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			briefs = append(briefs, models.UserBrief{
				ID:          user.ID,
				FirstName:   user.FirstName,
				LastName:    user.LastName,
				Occupation:  user.Occupation,
				Location:    user.Location,
				PicturePath: user.PicturePath,
			})
		}
	}
	return briefs, nil
}

func (r *fakeUserRepo) ToggleFriend(ctx context.Context, id, friendID primitive.ObjectID) (*models.User, error) {
	r.mut.Lock()
	defer r.mut.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user %s", id.Hex())
	}
	friend, ok := r.users[friendID]
	if !ok {
		return nil, apperrors.NotFound("user %s", friendID.Hex())
	}

	user.Friends = toggleID(user.Friends, friendID)
	friend.Friends = toggleID(friend.Friends, id)

	copied := *user
	return &copied, nil
}

func toggleID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return append(ids, id)
}

func (r *fakeUserRepo) UpdateSocialLinks(ctx context.Context, id primitive.ObjectID, twitter, linkedin string) (*models.User, error) {
	r.mut.Lock()
	defer r.mut.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user %s", id.Hex())
	}
	user.Twitter = twitter
	user.LinkedIn = linkedin
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) UpdatePicturePath(ctx context.Context, id primitive.ObjectID, picturePath string) error {
	r.mut.Lock()
	defer r.mut.Unlock()
	user, ok := r.users[id]
	if !ok {
		return apperrors.NotFound("user %s", id.Hex())
	}
	user.PicturePath = picturePath
	return nil
}

type fakePostRepo struct {
	mut   sync.Mutex
	posts map[primitive.ObjectID]*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[primitive.ObjectID]*models.Post)}
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) error {
	r.mut.Lock()
	defer r.mut.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	copied := clonePost(post)
	r.posts[post.ID] = &copied
	return nil
}

func clonePost(post *models.Post) models.Post {
	copied := *post
	copied.Likes = make(map[string]bool, len(post.Likes))
	for k, v := range post.Likes {
		copied.Likes[k] = v
	}
	copied.Comments = append([]models.Comment(nil), post.Comments...)
	return copied
}

func (r *fakePostRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mut.Lock()
	defer r.mut.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post %s", id.Hex())
	}
	copied := clonePost(post)
	return &copied, nil
}

func (r *fakePostRepo) GetAll(ctx context.Context) ([]models.Post, error) {
	r.mut.Lock()
	defer r.mut.Unlock()
	posts := []models.Post{}
	for _, post := range r.posts {
		posts = append(posts, clonePost(post))
	}
	return posts, nil
}

func (r *fakePostRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	r.mut.Lock()
	defer r.mut.Unlock()
	posts := []models.Post{}
	for _, post := range r.posts {
		if post.UserID == userID {
			posts = append(posts, clonePost(post))
		}
	}
	return posts, nil
}

func (r *fakePostRepo) ReplaceLikes(ctx context.Context, id primitive.ObjectID, likes map[string]bool) (*models.Post, error) {
	r.mut.Lock()
	defer r.mut.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post %s", id.Hex())
	}
	post.Likes = likes
	copied := clonePost(post)
	return &copied, nil
}

func (r *fakePostRepo) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	r.mut.Lock()
	defer r.mut.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post %s", id.Hex())
	}
	post.Comments = append(post.Comments, comment)
	copied := clonePost(post)
	return &copied, nil
}

func (r *fakePostRepo) UpdatePicturePath(ctx context.Context, id primitive.ObjectID, picturePath string) error {
	r.mut.Lock()
	defer r.mut.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return apperrors.NotFound("post %s", id.Hex())
	}
	post.PicturePath = picturePath
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mut.Lock()
	defer r.mut.Unlock()
	if _, ok := r.posts[id]; !ok {
		return apperrors.NotFound("post %s", id.Hex())
	}
	delete(r.posts, id)
	return nil
}

// fakeStoryRepo keeps every created story, including lapsed ones, to mimic
// the window where the TTL monitor has not physically purged a document yet.
type fakeStoryRepo struct {
	mut          sync.Mutex
	stories      []models.Story
	visibleCalls int
}

func (r *fakeStoryRepo) Create(ctx context.Context, story *models.Story) error {
	r.mut.Lock()
	defer r.mut.Unlock()
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	r.stories = append(r.stories, *story)
	return nil
}

func (r *fakeStoryRepo) ListVisible(ctx context.Context, now time.Time) ([]models.Story, error) {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.visibleCalls++

	visible := []models.Story{}
	for i := len(r.stories) - 1; i >= 0; i-- {
		story := r.stories[i]
		if !story.Archived && story.ExpiresAt.After(now) {
			visible = append(visible, story)
		}
	}
	return visible, nil
}

func (r *fakeStoryRepo) ListExpiredBetween(ctx context.Context, from, to time.Time) ([]models.Story, error) {
	r.mut.Lock()
	defer r.mut.Unlock()

	expired := []models.Story{}
	for _, story := range r.stories {
		if !story.Archived && story.ExpiresAt.After(from) && !story.ExpiresAt.After(to) {
			expired = append(expired, story)
		}
	}
	return expired, nil
}

func (r *fakeStoryRepo) listCalls() int {
	r.mut.Lock()
	defer r.mut.Unlock()
	return r.visibleCalls
}

func (r *fakeStoryRepo) count() int {
	r.mut.Lock()
	defer r.mut.Unlock()
	return len(r.stories)
}
