package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/khoahotran/career-onboard/internal/application/service"
	"github.com/khoahotran/career-onboard/internal/domain/insight"
	"github.com/khoahotran/career-onboard/internal/domain/profile"
	"github.com/khoahotran/career-onboard/internal/domain/user"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

type OnboardingRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	testLogger  logger.Logger
	userRepo    user.Repository
	insightRepo insight.Repository
	uow         *PostgresUnitOfWork
}

func (s *OnboardingRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.testLogger = logger.NewNop()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.userRepo = NewPostgresUserRepo(s.dbPool, s.testLogger)
	s.insightRepo = NewPostgresInsightRepo(s.dbPool, s.testLogger)
	s.uow = NewPostgresUnitOfWork(s.dbPool, s.testLogger)
}

func (s *OnboardingRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func (s *OnboardingRepoIntegrationTestSuite) SetupTest() {
	_, err := s.dbPool.Exec(context.Background(), `TRUNCATE users, industry_insights`)
	s.Require().NoError(err)
}

func TestOnboardingRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(OnboardingRepoIntegrationTestSuite))
}

func (s *OnboardingRepoIntegrationTestSuite) seedUser(externalID string) *user.User {
	u, err := s.userRepo.Create(context.Background(), user.NewFromIdentity(&user.Identity{
		ExternalID: externalID,
		FirstName:  "Test",
		LastName:   "User",
		Email:      externalID + "@example.com",
	}, time.Now().UTC()))
	s.Require().NoError(err)
	return u
}

func (s *OnboardingRepoIntegrationTestSuite) Test_User_Create_Is_Idempotent() {
	ctx := context.Background()

	first := s.seedUser("idp_a")
	again, err := s.userRepo.Create(ctx, user.NewFromIdentity(&user.Identity{ExternalID: "idp_a", Email: "other@example.com"}, time.Now().UTC()))

	s.NoError(err)
	s.Equal(first.ID, again.ID)
	s.Equal("idp_a@example.com", again.Email)
	s.Equal("Test User", again.Name)
	s.Equal([]string{}, again.Skills)
	s.False(again.OnboardingCompleted)

	industry, err := s.userRepo.FindIndustryByExternalID(ctx, "idp_a")
	s.NoError(err)
	s.Nil(industry)

	_, err = s.userRepo.FindByExternalID(ctx, "missing")
	s.ErrorIs(err, user.ErrUserNotFound)
	_, err = s.userRepo.FindIndustryByExternalID(ctx, "missing")
	s.ErrorIs(err, user.ErrUserNotFound)
}

func (s *OnboardingRepoIntegrationTestSuite) Test_Insight_RoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	rate := 7.5
	in := (&insight.Generated{
		SalaryRanges:  []insight.SalaryRange{{Role: "SRE", Min: 80, Max: 160, Median: 120, Location: "EU"}},
		GrowthRate:    &rate,
		DemandLevel:   "High",
		MarketOutlook: "Negative",
		TopSkills:     []string{"Linux"},
	}).Normalize("tech-ops", now, 0)

	created, err := s.insightRepo.Create(ctx, in)
	s.Require().NoError(err)

	found, err := s.insightRepo.FindByIndustry(ctx, "tech-ops")
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal(insight.DemandHigh, found.DemandLevel)
	s.Equal(insight.OutlookNegative, found.MarketOutlook)
	s.Equal(7.5, found.GrowthRate)
	s.Equal(in.SalaryRanges, found.SalaryRanges)
	s.Equal([]string{"Linux"}, found.TopSkills)
	s.Equal([]string{}, found.KeyTrends)
	s.WithinDuration(now.Add(insight.RefreshInterval), found.NextUpdated, time.Second)

	again, err := s.insightRepo.Create(ctx, insight.Default("tech-ops", now, 0))
	s.NoError(err)
	s.Equal(created.ID, again.ID, "existing row wins")
	s.Equal(insight.DemandHigh, again.DemandLevel)

	_, err = s.insightRepo.FindByIndustry(ctx, "unknown")
	s.ErrorIs(err, insight.ErrInsightNotFound)
}

func (s *OnboardingRepoIntegrationTestSuite) Test_UnitOfWork_Commits_Profile_And_Insight() {
	ctx := context.Background()
	u := s.seedUser("idp_commit")

	err := s.uow.Do(ctx, func(ctx context.Context, st service.Stores) error {
		if _, err := st.Insights.Create(ctx, insight.Default("finance", time.Now().UTC(), 0)); err != nil {
			return err
		}
		_, err := st.Users.UpdateProfile(ctx, u.ID, profile.Update{
			Industry:   "finance",
			Skills:     []string{"Excel", "SQL"},
			Experience: 3,
			Bio:        "analyst",
		})
		return err
	})
	s.Require().NoError(err)

	stored, err := s.userRepo.FindByExternalID(ctx, "idp_commit")
	s.Require().NoError(err)
	s.Require().NotNil(stored.Industry)
	s.Equal("finance", *stored.Industry)
	s.Equal([]string{"Excel", "SQL"}, stored.Skills)
	s.Equal(3, stored.Experience)
	s.True(stored.OnboardingCompleted)
}

func (s *OnboardingRepoIntegrationTestSuite) Test_UnitOfWork_Rolls_Back_Insight() {
	ctx := context.Background()
	u := s.seedUser("idp_rollback")
	boom := errors.New("user update failed")

	err := s.uow.Do(ctx, func(ctx context.Context, st service.Stores) error {
		if _, err := st.Insights.Create(ctx, insight.Default("healthcare", time.Now().UTC(), 0)); err != nil {
			return err
		}
		if _, err := st.Users.UpdateProfile(ctx, u.ID, profile.Update{Industry: "healthcare", Skills: []string{}}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.insightRepo.FindByIndustry(ctx, "healthcare")
	s.ErrorIs(err, insight.ErrInsightNotFound)
	industry, err := s.userRepo.FindIndustryByExternalID(ctx, "idp_rollback")
	s.NoError(err)
	s.Nil(industry)
}

func (s *OnboardingRepoIntegrationTestSuite) Test_UnitOfWork_Rolls_Back_On_Panic() {
	ctx := context.Background()

	s.Panics(func() {
		_ = s.uow.Do(ctx, func(ctx context.Context, st service.Stores) error {
			if _, err := st.Insights.Create(ctx, insight.Default("energy", time.Now().UTC(), 0)); err != nil {
				return err
			}
			panic("unexpected")
		})
	})

	_, err := s.insightRepo.FindByIndustry(ctx, "energy")
	s.ErrorIs(err, insight.ErrInsightNotFound)
}

func (s *OnboardingRepoIntegrationTestSuite) Test_UpdateProfile_Unknown_Industry_Violates_FK() {
	ctx := context.Background()
	u := s.seedUser("idp_fk")

	_, err := s.userRepo.UpdateProfile(ctx, u.ID, profile.Update{Industry: "no-such-industry", Skills: []string{}})
	s.Error(err)
}

func (s *OnboardingRepoIntegrationTestSuite) Test_Concurrent_First_Time_Provisioning_Converges() {
	ctx := context.Background()
	const workers = 8

	var wg sync.WaitGroup
	ids := make(chan string, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.uow.Do(ctx, func(ctx context.Context, st service.Stores) error {
				in, err := st.Insights.Create(ctx, insight.Default("education", time.Now().UTC(), 0))
				if err != nil {
					return err
				}
				ids <- in.ID.String()
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
	seen := map[string]struct{}{}
	for id := range ids {
		seen[id] = struct{}{}
	}
	s.Len(seen, 1, "every transaction must observe the same row")

	var count int
	s.Require().NoError(s.dbPool.QueryRow(ctx, `SELECT count(*) FROM industry_insights WHERE industry = $1`, "education").Scan(&count))
	s.Equal(1, count)
}
