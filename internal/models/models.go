package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	FirstName    string               `json:"firstName" bson:"firstName"`
	LastName     string               `json:"lastName" bson:"lastName"`
	Email        string               `json:"email" bson:"email"`
	PasswordHash string               `json:"-" bson:"password"`
	PicturePath  string               `json:"picturePath" bson:"picturePath"`
	Friends      []primitive.ObjectID `json:"friends" bson:"friends"`
	Location     string               `json:"location" bson:"location"`
	Occupation   string               `json:"occupation" bson:"occupation"`
	Twitter      string               `json:"twitter" bson:"twitter"`
	LinkedIn     string               `json:"linkedin" bson:"linkedin"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserBrief is the restricted author projection handed out in friend lists,
// comments and stories. Never carries credentials.
type UserBrief struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	FirstName   string             `json:"firstName" bson:"firstName"`
	LastName    string             `json:"lastName" bson:"lastName"`
	Occupation  string             `json:"occupation,omitempty" bson:"occupation,omitempty"`
	Location    string             `json:"location,omitempty" bson:"location,omitempty"`
	PicturePath string             `json:"picturePath" bson:"picturePath"`
}

type Comment struct {
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	Author    *UserBrief         `json:"author,omitempty" bson:"-"`
}

// Post carries an author snapshot taken at creation time; it is not
// live-joined against the users collection afterwards. Likes has set
// semantics: presence of a user id key means that user liked the post.
type Post struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	FirstName       string             `json:"firstName" bson:"firstName"`
	LastName        string             `json:"lastName" bson:"lastName"`
	Location        string             `json:"location" bson:"location"`
	Description     string             `json:"description" bson:"description"`
	PicturePath     string             `json:"picturePath" bson:"picturePath"`
	UserPicturePath string             `json:"userPicturePath" bson:"userPicturePath"`
	Likes           map[string]bool    `json:"likes" bson:"likes"`
	Comments        []Comment          `json:"comments" bson:"comments"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type Song struct {
	Name       string  `json:"name" bson:"name"`
	Artist     string  `json:"artist" bson:"artist"`
	Similarity float64 `json:"similarity,omitempty" bson:"similarity,omitempty"`
	Picks      int     `json:"picks,omitempty" bson:"picks,omitempty"`
	VideoID    string  `json:"videoId,omitempty" bson:"videoId,omitempty"`
}

// Story is visible iff Archived is false and ExpiresAt is still in the
// future. The stories collection additionally carries a TTL index on
// expiresAt, but physical deletion lags the instant; the visibility filter is
// the authority.
type Story struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	MediaURL  string             `json:"mediaUrl" bson:"mediaUrl"`
	Song      *Song              `json:"song,omitempty" bson:"song,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	ExpiresAt time.Time          `json:"expiresAt" bson:"expiresAt"`
	Archived  bool               `json:"archived" bson:"archived"`
	Author    *UserBrief         `json:"author,omitempty" bson:"-"`
}

func (s *Story) Visible(now time.Time) bool {
	return !s.Archived && now.Before(s.ExpiresAt)
}
