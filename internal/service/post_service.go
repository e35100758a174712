package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sociogram/internal/apperrors"
	"sociogram/internal/cache"
	"sociogram/internal/config"
	"sociogram/internal/models"
	"sociogram/internal/realtime"
	"sociogram/internal/repository"
)

type CreatePostRequest struct {
	UserID      string
	Description string
	// Optional media; reconciled with the object store after the response.
	FileName string
	FileData []byte
}

type PostService interface {
	Create(ctx context.Context, req CreatePostRequest) (*models.Post, error)
	ListFeed(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, userID string) ([]models.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error)
	AddComment(ctx context.Context, postID, userID, text string) (*models.Post, error)
	GetComments(ctx context.Context, postID string) ([]models.Comment, error)
	Delete(ctx context.Context, postID, requesterID string) error
}

type postService struct {
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	media       MediaService
	cache       cache.Cache
	broadcaster realtime.Broadcaster
	cfg         *config.Config
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository,
	media MediaService, cacheLayer cache.Cache, broadcaster realtime.Broadcaster, cfg *config.Config) PostService {

	return &postService{
		postRepo:    postRepo,
		userRepo:    userRepo,
		media:       media,
		cache:       cacheLayer,
		broadcaster: broadcaster,
		cfg:         cfg,
	}
}

// Create stores the post with an author snapshot taken now; the author fields
// are not re-joined later. Media, when present, is written under a local
// asset path immediately and uploaded to the object store after the response.
func (p *postService) Create(ctx context.Context, req CreatePostRequest) (*models.Post, error) {
	userID, err := parseObjectID(req.UserID)
	if err != nil {
		return nil, err
	}

	user, err := p.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Validation("user %s does not exist", req.UserID)
		}
		return nil, err
	}

	picturePath := ""
	if len(req.FileData) > 0 {
		if err := p.media.ValidateImageName(req.FileName); err != nil {
			return nil, err
		}
		picturePath = p.media.NewAssetPath(req.FileName)
	}

	post := &models.Post{
		UserID:          user.ID,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Location:        user.Location,
		Description:     req.Description,
		PicturePath:     picturePath,
		UserPicturePath: user.PicturePath,
		Likes:           map[string]bool{},
		Comments:        []models.Comment{},
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	p.cache.Invalidate(ctx, cache.KeyPosts)

	if picturePath != "" {
		p.reconcileMedia(post.ID, picturePath, req.FileName, req.FileData)
	}

	return post, nil
}

// reconcileMedia is the fire-and-forget upload path: the caller has already
// been answered, so the outcome is only observable through the out-of-band
// document update, the image cache entry and the broadcast.
func (p *postService) reconcileMedia(postID primitive.ObjectID, assetPath, fileName string, data []byte) {
	p.media.UploadDetached(postID.Hex(), fileName, data,
		func(ctx context.Context, objectName, mediaURL string) {
			if err := p.postRepo.UpdatePicturePath(ctx, postID, mediaURL); err != nil {
				log.Warn().Err(err).Str("post", postID.Hex()).Msg("failed to reconcile post media")
				return
			}

			p.media.CacheResolvedURL(ctx, assetPath, mediaURL)
			p.cache.Invalidate(ctx, cache.KeyPosts)
			p.broadcaster.Broadcast(realtime.EventPostImageUpdated, map[string]string{
				"postId":      postID.Hex(),
				"picturePath": mediaURL,
			})
		})
}

func (p *postService) ListFeed(ctx context.Context) ([]models.Post, error) {
	if cached, ok := p.cache.Get(ctx, cache.KeyPosts); ok {
		var posts []models.Post
		if err := json.Unmarshal([]byte(cached), &posts); err == nil {
			return posts, nil
		}
		log.Warn().Msg("discarding undecodable posts cache entry")
	}

	posts, err := p.postRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].PicturePath = p.media.ResolveURL(ctx, posts[i].PicturePath)
		posts[i].UserPicturePath = p.media.ResolveURL(ctx, posts[i].UserPicturePath)
	}

	if encoded, err := json.Marshal(posts); err == nil {
		p.cache.Set(ctx, cache.KeyPosts, string(encoded), p.cfg.PostsCacheTTL)
	}

	return posts, nil
}

func (p *postService) ListByAuthor(ctx context.Context, userID string) ([]models.Post, error) {
	id, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}

	posts, err := p.postRepo.GetByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].PicturePath = p.media.ResolveURL(ctx, posts[i].PicturePath)
		posts[i].UserPicturePath = p.media.ResolveURL(ctx, posts[i].UserPicturePath)
	}

	return posts, nil
}

// ToggleLike flips the presence of the user id in the likes set. Concurrent
// toggles on the same post are a read-modify-write race, last write wins.
func (p *postService) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	id, err := parseObjectID(postID)
	if err != nil {
		return nil, err
	}
	if _, err := parseObjectID(userID); err != nil {
		return nil, err
	}

	post, err := p.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	likes := post.Likes
	if likes == nil {
		likes = map[string]bool{}
	}
	if likes[userID] {
		delete(likes, userID)
	} else {
		likes[userID] = true
	}

	updated, err := p.postRepo.ReplaceLikes(ctx, id, likes)
	if err != nil {
		return nil, err
	}

	p.cache.Invalidate(ctx, cache.KeyPosts)
	return updated, nil
}

func (p *postService) AddComment(ctx context.Context, postID, userID, text string) (*models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation("comment text is required")
	}

	id, err := parseObjectID(postID)
	if err != nil {
		return nil, err
	}
	uid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		UserID:    uid,
		Text:      text,
		CreatedAt: time.Now(),
	}

	updated, err := p.postRepo.AppendComment(ctx, id, comment)
	if err != nil {
		return nil, err
	}

	p.cache.Invalidate(ctx, cache.KeyPosts)
	return updated, nil
}

func (p *postService) GetComments(ctx context.Context, postID string) ([]models.Comment, error) {
	id, err := parseObjectID(postID)
	if err != nil {
		return nil, err
	}

	post, err := p.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(post.Comments))
	seen := map[primitive.ObjectID]bool{}
	for _, c := range post.Comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}

	briefs, err := p.userRepo.GetBriefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.UserBrief, len(briefs))
	for _, b := range briefs {
		b.PicturePath = p.media.ResolveURL(ctx, b.PicturePath)
		byID[b.ID] = b
	}

	comments := post.Comments
	for i := range comments {
		if brief, ok := byID[comments[i].UserID]; ok {
			b := brief
			comments[i].Author = &b
		}
	}

	return comments, nil
}

// Delete is owner-only: the check lives here at the service boundary, not in
// individual handlers. Cache invalidation and media removal are best-effort;
// the document delete is the operation that can fail the request.
func (p *postService) Delete(ctx context.Context, postID, requesterID string) error {
	id, err := parseObjectID(postID)
	if err != nil {
		return err
	}

	post, err := p.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if post.UserID.Hex() != requesterID {
		return apperrors.Forbidden("only the owner may delete a post")
	}

	if err := p.postRepo.Delete(ctx, id); err != nil {
		return err
	}

	keys := []string{cache.KeyPosts}
	if post.PicturePath != "" {
		keys = append(keys, cache.ImageKey(post.PicturePath))
	}
	p.cache.Invalidate(ctx, keys...)

	if post.PicturePath != "" {
		p.media.DeleteForURL(ctx, p.media.ResolveURL(ctx, post.PicturePath))
	}

	return nil
}
