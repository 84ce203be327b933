// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"time"

	"tangerine/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	Factory     FactoryOptions
}

// Seed populates the database with test data: users, posts, threaded
// comments, and comment favorites. Thread group numbers are allocated the
// same way the live service does, sequentially per post, so seeded data is
// indistinguishable from organically created data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db, opts.Factory)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(users))

	posts, err := createPosts(f, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	threads, replies, err := createCommentThreads(f, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("%d comment threads created (%d replies)", threads, replies)

	favorites, err := createFavorites(f, users)
	if err != nil {
		return fmt.Errorf("failed to create favorites: %w", err)
	}
	log.Printf("%d comment favorites created", favorites)

	log.Println("Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE favorite_comments, comments, trending_posts, posts, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include some specific users for consistency if cleaning
	if count >= 3 {
		baseUsers := []string{"corey", "cburns", "test"}
		for _, name := range baseUsers {
			name := name
			user, err := f.CreateUser(func(u *models.User) {
				u.Username = name
				u.Email = fmt.Sprintf("%s@example.com", name)
				u.Bio = "One of the OGs."
				u.Avatar = fmt.Sprintf("https://i.pravatar.cc/150?u=%s", name)
			})
			if err == nil {
				users = append(users, user)
			}
		}
	}

	for i := len(users); i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i%100 == 0 && i > 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

func createPosts(f *Factory, users []*models.User, count int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		user := users[f.rng.Intn(len(users))]
		posts = append(posts, f.BuildPost(user))
	}

	// chunked batch insert keeps large seeds fast
	const batchSize = 200
	for start := 0; start < len(posts); start += batchSize {
		end := start + batchSize
		if end > len(posts) {
			end = len(posts)
		}
		batch := posts[start:end]
		if err := f.CreatePostsBatch(batch); err != nil {
			return nil, err
		}
		log.Printf("Created %d posts...", end)
	}

	return posts, nil
}

// createCommentThreads gives each post zero to five threads. Top-level
// comments take sequential group numbers starting at 1; replies inherit the
// parent's group and land after it in time.
func createCommentThreads(f *Factory, users []*models.User, posts []*models.Post) (threads, replies int, err error) {
	for _, post := range posts {
		numThreads := f.rng.Intn(6)
		for group := int64(1); group <= int64(numThreads); group++ {
			author := users[f.rng.Intn(len(users))]
			parent, createErr := f.CreateComment(author, post, nil, group, func(c *models.Comment) {
				c.CreatedAt = post.CreatedAt.Add(time.Duration(f.rng.Intn(72)) * time.Hour)
			})
			if createErr != nil {
				return threads, replies, createErr
			}
			threads++

			numReplies := f.rng.Intn(4)
			for j := 0; j < numReplies; j++ {
				replier := users[f.rng.Intn(len(users))]
				_, replyErr := f.CreateComment(replier, post, parent, 0, func(c *models.Comment) {
					c.CreatedAt = parent.CreatedAt.Add(time.Duration(f.rng.Intn(48)+1) * time.Hour)
				})
				if replyErr != nil {
					return threads, replies, replyErr
				}
				replies++
			}
		}
	}
	return threads, replies, nil
}

func createFavorites(f *Factory, users []*models.User) (int, error) {
	if f.opts.DryRun {
		return 0, nil
	}

	var comments []models.Comment
	if err := f.db.Select("id").Find(&comments).Error; err != nil {
		return 0, err
	}

	count := 0
	for i := range comments {
		numFavorites := f.rng.Intn(4)
		for j := 0; j < numFavorites; j++ {
			user := users[f.rng.Intn(len(users))]
			if err := f.CreateFavorite(user, &comments[i]); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
