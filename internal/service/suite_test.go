package service_test

import (
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/internal/service"
	"github.com/yamdb/yamdb/internal/testutil"
	"github.com/yamdb/yamdb/internal/utils"
)

// serviceSuite wires every service over one in-memory database.
type serviceSuite struct {
	suite.Suite
	testDB   *testutil.TestDatabase
	notifier *testutil.RecordingNotifier

	auth     *service.AuthService
	users    *service.UserService
	catalog  *service.CatalogService
	titles   *service.TitleService
	reviews  *service.ReviewService
	comments *service.CommentService
	ratings  *service.RatingService
}

func (s *serviceSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
}

func (s *serviceSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *serviceSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	db := s.testDB.DB
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	codes, err := utils.NewCodeGenerator("test-secret", time.Hour)
	s.Require().NoError(err)
	s.notifier = testutil.NewRecordingNotifier()

	s.ratings = service.NewRatingService(reviewRepo)
	s.auth = service.NewAuthService(userRepo, codes, utils.NewTokenIssuer("test-secret", time.Hour), s.notifier)
	s.users = service.NewUserService(userRepo)
	s.catalog = service.NewCatalogService(categoryRepo, genreRepo)
	s.titles = service.NewTitleService(titleRepo, categoryRepo, genreRepo, s.ratings)
	s.reviews = service.NewReviewService(reviewRepo, titleRepo)
	s.comments = service.NewCommentService(repository.NewCommentRepository(db), s.reviews)
}

func (s *serviceSuite) user(username string, role models.Role) *models.User {
	return testutil.CreateUser(s.T(), s.testDB.DB, username, role)
}

func ptr[T any](v T) *T {
	return &v
}

func (s *serviceSuite) titleFixture(name string, year int) *models.Title {
	return testutil.CreateTitle(s.T(), s.testDB.DB, name, year, nil)
}

func (s *serviceSuite) reviewFixture(title *models.Title, author *models.User, score int) *models.Review {
	return testutil.CreateReview(s.T(), s.testDB.DB, title, author, score)
}

func (s *serviceSuite) commentFixture(review *models.Review, author *models.User, text string) *models.Comment {
	return testutil.CreateComment(s.T(), s.testDB.DB, review, author, text)
}
