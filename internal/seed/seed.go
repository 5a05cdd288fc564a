// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	NumVotes    int
	ShouldClean bool
	// SkipBcrypt stores the demo password in plain text. Dev fast mode only.
	SkipBcrypt bool
}

// Seeder populates the database with demo users, posts and votes.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run executes the full seeding pipeline.
func (s *Seeder) Run() error {
	log.Printf("Seeding %d users, %d posts, %d votes...",
		s.opts.NumUsers, s.opts.NumPosts, s.opts.NumVotes)

	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	users, err := s.CreateUsers(s.opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := s.CreatePosts(users, s.opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	votes, err := s.CreateVoteMesh(users, posts, s.opts.NumVotes)
	if err != nil {
		return fmt.Errorf("failed to create votes: %w", err)
	}
	log.Printf("created %d votes", votes)

	log.Println("Seeding complete. All demo users have the password: password123")
	return nil
}

// ClearAll removes existing demo data. Votes go first so the foreign keys
// never dangle, even without ON DELETE CASCADE at the database level.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []any{&models.Vote{}, &models.Post{}, &models.User{}} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateUsers persists count demo users sharing the password "password123".
func (s *Seeder) CreateUsers(count int) ([]models.User, error) {
	password := "password123"
	if !s.opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		password = string(hashed)
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			Password: password,
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := s.db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreatePosts spreads count posts across the given users with a realistic
// created_at spread over the past 90 days.
func (s *Seeder) CreatePosts(users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 || count == 0 {
		return nil, nil
	}

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		owner := users[s.rng.Intn(len(users))]
		age := time.Duration(s.rng.Intn(90*24)) * time.Hour
		created := time.Now().Add(-age)
		posts = append(posts, &models.Post{
			Content:   gofakeit.Paragraph(1, 3, 8, " "),
			OwnerID:   owner.ID,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	if err := s.db.Create(&posts).Error; err != nil {
		return nil, err
	}

	out := make([]models.Post, len(posts))
	for i, p := range posts {
		out[i] = *p
	}
	return out, nil
}

// CreateVoteMesh scatters up to count votes across users and posts. A user
// never votes on their own post and casts at most one vote per post, so the
// actual number created can fall short of count. Returns the number created.
func (s *Seeder) CreateVoteMesh(users []models.User, posts []models.Post, count int) (int, error) {
	if len(users) == 0 || len(posts) == 0 || count == 0 {
		return 0, nil
	}

	type pair struct{ postID, userID uint }
	seen := make(map[pair]bool, count)
	votes := make([]models.Vote, 0, count)

	// Bounded attempts so a tiny dataset cannot spin forever.
	for attempts := 0; len(votes) < count && attempts < count*10; attempts++ {
		post := posts[s.rng.Intn(len(posts))]
		voter := users[s.rng.Intn(len(users))]
		if voter.ID == post.OwnerID {
			continue
		}
		key := pair{post.ID, voter.ID}
		if seen[key] {
			continue
		}
		seen[key] = true

		kind := models.VoteLike
		if s.rng.Intn(4) == 0 {
			kind = models.VoteDislike
		}
		votes = append(votes, models.Vote{
			PostID: post.ID,
			UserID: voter.ID,
			Kind:   kind,
		})
	}

	if len(votes) == 0 {
		return 0, nil
	}
	if err := s.db.Create(&votes).Error; err != nil {
		return 0, err
	}
	return len(votes), nil
}
