// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development only.
package seed

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"snapfeed/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// placeholderPNG is a 1x1 PNG used as the artifact for generated posts,
// so seeded records point at files that actually exist on disk.
var placeholderPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg==")

// Options controls seeding volume and behavior.
type Options struct {
	Users    int
	Posts    int
	ImageDir string
}

// Seeder populates the database with generated users and posts.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	if opts.Users <= 0 {
		opts.Users = 5
	}
	if opts.Posts <= 0 {
		opts.Posts = 20
	}
	if opts.ImageDir == "" {
		opts.ImageDir = "images"
	}
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes every seeded row. Posts first so the user FK holds.
func (s *Seeder) ClearAll() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
		return err
	}
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error
}

// Run seeds users and posts. Every generated account uses the password
// "password123".
func (s *Seeder) Run() ([]models.User, error) {
	users := make([]models.User, 0, s.opts.Users)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	for i := 0; i < s.opts.Users; i++ {
		user := models.User{
			Email:    gofakeit.Email(),
			Name:     gofakeit.Name(),
			Password: string(hash),
			Status:   gofakeit.Sentence(4),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("seed user %d: %w", i, err)
		}
		users = append(users, user)
	}

	for i := 0; i < s.opts.Posts; i++ {
		owner := users[s.rng.Intn(len(users))]
		imagePath, err := s.writeArtifact()
		if err != nil {
			return nil, fmt.Errorf("seed artifact %d: %w", i, err)
		}

		post := models.Post{
			Title:    gofakeit.Sentence(5),
			Content:  gofakeit.Paragraph(1, 3, 5, "\n"),
			ImageURL: imagePath,
			UserID:   owner.ID,
		}
		// spread creation times so pagination windows look realistic
		post.CreatedAt = time.Now().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour)

		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("seed post %d: %w", i, err)
		}
	}

	return users, nil
}

func (s *Seeder) writeArtifact() (string, error) {
	if err := os.MkdirAll(s.opts.ImageDir, 0o750); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-seed.png", uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.opts.ImageDir, name), placeholderPNG, 0o600); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(s.opts.ImageDir, name)), nil
}
