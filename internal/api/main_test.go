package api

import (
	"database/sql/driver"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"enbapp/internal/enbapi"
)

// fakeRelayer stands in for the contract client, recording calls
type fakeRelayer struct {
	txHash   string
	err      error
	claims   []string
	upgrades []uint8
}

func (f *fakeRelayer) SubmitDailyClaim(address string) (string, error) {
	f.claims = append(f.claims, address)
	return f.txHash, f.err
}

func (f *fakeRelayer) SubmitMembershipUpgrade(address string, level uint8) (string, error) {
	f.upgrades = append(f.upgrades, level)
	return f.txHash, f.err
}

// newTestApp wires an App around a sqlmock-backed gorm handle. The Redis
// client points at an unreachable address, so cache reads fail fast and
// the handlers take the database path.
func newTestApp(t *testing.T) (*enbapi.App, sqlmock.Sqlmock, *fakeRelayer) {
	t.Helper()
	sqlDb, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
			return nil
		})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDb.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDb,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	relayer := &fakeRelayer{txHash: "0xrelayedtx"}
	app := &enbapi.App{
		Relayer: relayer,
		Rdb: redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: time.Millisecond,
			MaxRetries:  -1,
		}),
		Db: db,
	}
	return app, mock, relayer
}

func perform(app *enbapi.App, method, route string, handler gin.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("app", app)
	})
	router.Handle(method, route, handler)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var accountColumns = []string{
	"id", "wallet_address", "membership_level", "invitation_code",
	"max_invitation_uses", "current_invitation_uses",
	"enb_balance", "total_earned", "consecutive_days",
	"last_daily_claim_time", "is_activated", "invited_by",
}

func accountRows(accounts ...enbapi.Account) *sqlmock.Rows {
	rows := sqlmock.NewRows(accountColumns)
	for _, a := range accounts {
		var lastClaim driver.Value
		if a.LastDailyClaimTime != nil {
			lastClaim = *a.LastDailyClaimTime
		}
		rows.AddRow(
			int64(a.Id), a.WalletAddress, a.MembershipLevel, a.InvitationCode,
			int64(a.MaxInvitationUses), int64(a.CurrentInvitationUses),
			a.EnbBalance, a.TotalEarned, int64(a.ConsecutiveDays),
			lastClaim, a.IsActivated, a.InvitedBy,
		)
	}
	return rows
}

func usageColumns() []string {
	return []string{"id", "invitation_code", "used_by", "inviter_wallet", "used_at"}
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func idRows(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"}).AddRow(id)
}
