// Package importer bulk-loads the catalogue from a directory of CSV exports.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// File names expected in the data directory, in load order.
const (
	UsersFile      = "users.csv"
	CategoriesFile = "category.csv"
	GenresFile     = "genre.csv"
	TitlesFile     = "titles.csv"
	GenreTitleFile = "genre_title.csv"
	ReviewsFile    = "review.csv"
	CommentsFile   = "comments.csv"
)

// Stats counts the rows inserted per file.
type Stats map[string]int

// Importer loads every file in a single transaction. Ids in the CSVs are only
// used to resolve references between files; rows get fresh database ids.
type Importer struct {
	db *gorm.DB

	users      map[string]uuid.UUID
	categories map[string]int64
	genres     map[string]int64
	titles     map[string]int64
	reviews    map[string]int64
}

func New(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// Load imports dir. Missing files are skipped; any bad row aborts the whole
// import.
func (im *Importer) Load(ctx context.Context, dir string) (Stats, error) {
	im.users = make(map[string]uuid.UUID)
	im.categories = make(map[string]int64)
	im.genres = make(map[string]int64)
	im.titles = make(map[string]int64)
	im.reviews = make(map[string]int64)

	steps := []struct {
		file string
		load func(tx *gorm.DB, r record) error
	}{
		{UsersFile, im.loadUser},
		{CategoriesFile, im.loadCategory},
		{GenresFile, im.loadGenre},
		{TitlesFile, im.loadTitle},
		{GenreTitleFile, im.loadGenreTitle},
		{ReviewsFile, im.loadReview},
		{CommentsFile, im.loadComment},
	}

	stats := make(Stats)
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range steps {
			n, err := eachRecord(filepath.Join(dir, step.file), func(r record) error {
				return step.load(tx, r)
			})
			if errors.Is(err, os.ErrNotExist) {
				logger.Log.Warn("Skipping missing data file", zap.String("file", step.file))
				continue
			}
			if err != nil {
				return fmt.Errorf("%s: %w", step.file, err)
			}
			stats[step.file] = n
			logger.Log.Info("Data file loaded", zap.String("file", step.file), zap.Int("rows", n))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (im *Importer) loadUser(tx *gorm.DB, r record) error {
	role := models.Role(r.get("role"))
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return r.errorf("unknown role %q", role)
	}
	user := &models.User{
		Username:  r.get("username"),
		Email:     r.get("email"),
		Role:      role,
		Bio:       r.get("bio"),
		FirstName: r.get("first_name"),
		LastName:  r.get("last_name"),
	}
	if err := tx.Create(user).Error; err != nil {
		return r.wrap(err)
	}
	im.users[r.get("id")] = user.ID
	return nil
}

func (im *Importer) loadCategory(tx *gorm.DB, r record) error {
	category := &models.Category{Name: r.get("name"), Slug: r.get("slug")}
	if err := tx.Create(category).Error; err != nil {
		return r.wrap(err)
	}
	im.categories[r.get("id")] = category.ID
	return nil
}

func (im *Importer) loadGenre(tx *gorm.DB, r record) error {
	genre := &models.Genre{Name: r.get("name"), Slug: r.get("slug")}
	if err := tx.Create(genre).Error; err != nil {
		return r.wrap(err)
	}
	im.genres[r.get("id")] = genre.ID
	return nil
}

func (im *Importer) loadTitle(tx *gorm.DB, r record) error {
	year, err := strconv.Atoi(r.get("year"))
	if err != nil {
		return r.errorf("invalid year %q", r.get("year"))
	}
	title := &models.Title{
		Name:        r.get("name"),
		Year:        year,
		Description: r.get("description"),
	}
	if ref := r.get("category"); ref != "" {
		id, ok := im.categories[ref]
		if !ok {
			return r.errorf("unknown category %q", ref)
		}
		title.CategoryID = &id
	}
	if err := tx.Omit("Category", "Genres").Create(title).Error; err != nil {
		return r.wrap(err)
	}
	im.titles[r.get("id")] = title.ID
	return nil
}

func (im *Importer) loadGenreTitle(tx *gorm.DB, r record) error {
	titleID, ok := im.titles[r.get("title_id")]
	if !ok {
		return r.errorf("unknown title %q", r.get("title_id"))
	}
	genreID, ok := im.genres[r.get("genre_id")]
	if !ok {
		return r.errorf("unknown genre %q", r.get("genre_id"))
	}
	err := tx.Exec("INSERT INTO genre_titles (title_id, genre_id) VALUES (?, ?)", titleID, genreID).Error
	return r.wrap(err)
}

func (im *Importer) loadReview(tx *gorm.DB, r record) error {
	titleID, ok := im.titles[r.get("title_id")]
	if !ok {
		return r.errorf("unknown title %q", r.get("title_id"))
	}
	authorID, ok := im.users[r.get("author")]
	if !ok {
		return r.errorf("unknown author %q", r.get("author"))
	}
	score, err := strconv.Atoi(r.get("score"))
	if err != nil || score < 1 || score > 10 {
		return r.errorf("invalid score %q", r.get("score"))
	}
	pubDate, err := r.time("pub_date")
	if err != nil {
		return err
	}
	review := &models.Review{
		TitleID:  titleID,
		AuthorID: authorID,
		Text:     r.get("text"),
		Score:    score,
		PubDate:  pubDate,
	}
	if err := tx.Omit("Title", "Author").Create(review).Error; err != nil {
		return r.wrap(err)
	}
	im.reviews[r.get("id")] = review.ID
	return nil
}

func (im *Importer) loadComment(tx *gorm.DB, r record) error {
	reviewID, ok := im.reviews[r.get("review_id")]
	if !ok {
		return r.errorf("unknown review %q", r.get("review_id"))
	}
	authorID, ok := im.users[r.get("author")]
	if !ok {
		return r.errorf("unknown author %q", r.get("author"))
	}
	pubDate, err := r.time("pub_date")
	if err != nil {
		return err
	}
	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: authorID,
		Text:     r.get("text"),
		PubDate:  pubDate,
	}
	return r.wrap(tx.Omit("Review", "Author").Create(comment).Error)
}

// record is one CSV row addressed by header name.
type record struct {
	line    int
	columns map[string]int
	fields  []string
}

func (r record) get(name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// time parses an RFC 3339 column. An empty value yields the zero time, which
// lets the database default apply.
func (r record) time(name string) (time.Time, error) {
	v := r.get(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, r.errorf("invalid %s %q", name, v)
	}
	return t.UTC(), nil
}

func (r record) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", r.line, fmt.Sprintf(format, args...))
}

func (r record) wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("line %d: %w", r.line, err)
}

// eachRecord calls fn for every data row of path and returns the row count.
func eachRecord(path string, fn func(record) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}

	n := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		line, _ := reader.FieldPos(0)
		if err := fn(record{line: line, columns: columns, fields: fields}); err != nil {
			return n, err
		}
		n++
	}
}
