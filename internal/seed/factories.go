// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"tangerine/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FactoryOptions tune how generated entities are built and persisted.
type FactoryOptions struct {
	// DryRun builds entities and assigns synthetic IDs without touching the DB.
	DryRun bool
	// SkipBcrypt stores plaintext passwords, useful for fast local reseeds.
	SkipBcrypt bool
	// MaxDays bounds how far back generated created_at timestamps spread.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts FactoryOptions
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts FactoryOptions) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the given user with a realistic created_at
// spread but does not persist it. Useful for batching.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:     gofakeit.Sentence(5),
		Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID:    user.ID,
		ViewCount: f.rng.Intn(500),
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
	post.LastActivityAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample `models.Post` for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: user=%d title=%q", post.UserID, post.Title)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// BuildComment constructs a comment without persisting it. A nil parent makes
// a top-level comment with the given group number; a non-nil parent makes a
// reply that inherits the parent's group number.
func (f *Factory) BuildComment(user *models.User, post *models.Post, parent *models.Comment, group int64, overrides ...func(*models.Comment)) *models.Comment {
	comment := &models.Comment{
		Content:     gofakeit.Sentence(8),
		UserID:      user.ID,
		PostID:      post.ID,
		GroupNumber: group,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
		comment.GroupNumber = parent.GroupNumber
	}

	for _, override := range overrides {
		override(comment)
	}
	return comment
}

// CreateComment constructs and persists a comment built by BuildComment.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parent *models.Comment, group int64, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := f.BuildComment(user, post, parent, group, overrides...)

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		log.Printf("[dry-run] CreateComment: post=%d group=%d reply=%v", comment.PostID, comment.GroupNumber, comment.IsReply())
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFavorite persists a favorite from `user` on `comment`. Conflicting
// rows are skipped so repeated seeding stays idempotent.
func (f *Factory) CreateFavorite(user *models.User, comment *models.Comment) error {
	favorite := &models.FavoriteComment{
		CommentID: comment.ID,
		UserID:    user.ID,
	}
	if f.opts.DryRun {
		log.Printf("[dry-run] CreateFavorite: comment=%d user=%d", comment.ID, user.ID)
		return nil
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(favorite).Error
}
