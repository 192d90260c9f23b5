package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enbapp/internal/enbapi"
)

func claimBody() string {
	return fmt.Sprintf(`{"walletAddress":%q,"transactionHash":"0xclaimtx"}`, testWallet)
}

type claimResponse struct {
	Reward          float64 `json:"reward"`
	EnbBalance      float64 `json:"enb_balance"`
	TotalEarned     float64 `json:"total_earned"`
	ConsecutiveDays uint    `json:"consecutive_days"`
}

func TestDailyClaimMissingTransactionHash(t *testing.T) {
	app, _, _ := newTestApp(t)
	w := perform(app, http.MethodPost, "/api/daily-claim", DailyClaim,
		"/api/daily-claim", fmt.Sprintf(`{"walletAddress":%q}`, testWallet))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDailyClaimAccountNotFound(t *testing.T) {
	app, mock, _ := newTestApp(t)
	mock.ExpectQuery(".*").WillReturnRows(accountRows())

	w := perform(app, http.MethodPost, "/api/daily-claim", DailyClaim,
		"/api/daily-claim", claimBody())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDailyClaimNotActivated(t *testing.T) {
	app, mock, _ := newTestApp(t)
	mock.ExpectQuery(".*").WillReturnRows(accountRows(enbapi.Account{
		Id:            1,
		WalletAddress: testWallet,
	}))

	w := perform(app, http.MethodPost, "/api/daily-claim", DailyClaim,
		"/api/daily-claim", claimBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not activated")
}

func TestDailyClaimAlreadyClaimedToday(t *testing.T) {
	app, mock, _ := newTestApp(t)
	now := time.Now()
	mock.ExpectQuery(".*").WillReturnRows(accountRows(enbapi.Account{
		Id:                 1,
		WalletAddress:      testWallet,
		MembershipLevel:    enbapi.MembershipBased,
		IsActivated:        true,
		LastDailyClaimTime: &now,
	}))

	w := perform(app, http.MethodPost, "/api/daily-claim", DailyClaim,
		"/api/daily-claim", claimBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already claimed today")
}

func TestDailyClaimContinuesStreak(t *testing.T) {
	app, mock, _ := newTestApp(t)
	yesterday := time.Now().AddDate(0, 0, -1)
	account := enbapi.Account{
		Id:                 1,
		WalletAddress:      testWallet,
		MembershipLevel:    enbapi.MembershipLegendary,
		IsActivated:        true,
		EnbBalance:         100,
		TotalEarned:        200,
		ConsecutiveDays:    3,
		LastDailyClaimTime: &yesterday,
	}
	mock.ExpectQuery(".*").WillReturnRows(accountRows(account))
	mock.ExpectBegin()
	mock.ExpectQuery(".*").WillReturnRows(accountRows(account))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(".*").WillReturnRows(sqlmock.NewRows([]string{"txid"}).AddRow(1))
	mock.ExpectCommit()

	w := perform(app, http.MethodPost, "/api/daily-claim", DailyClaim,
		"/api/daily-claim", claimBody())
	require.Equal(t, http.StatusOK, w.Code)

	// Day 4 on a Legendary account: 10 * 4 * 2
	var resp claimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 80.0, resp.Reward)
	assert.Equal(t, uint(4), resp.ConsecutiveDays)
	assert.Equal(t, 180.0, resp.EnbBalance)
	assert.Equal(t, 280.0, resp.TotalEarned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyClaimResetsStreakAfterGap(t *testing.T) {
	app, mock, _ := newTestApp(t)
	threeDaysAgo := time.Now().AddDate(0, 0, -3)
	account := enbapi.Account{
		Id:                 1,
		WalletAddress:      testWallet,
		MembershipLevel:    enbapi.MembershipSuperBased,
		IsActivated:        true,
		EnbBalance:         50,
		ConsecutiveDays:    5,
		LastDailyClaimTime: &threeDaysAgo,
	}
	mock.ExpectQuery(".*").WillReturnRows(accountRows(account))
	mock.ExpectBegin()
	mock.ExpectQuery(".*").WillReturnRows(accountRows(account))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(".*").WillReturnRows(sqlmock.NewRows([]string{"txid"}).AddRow(2))
	mock.ExpectCommit()

	w := perform(app, http.MethodPost, "/api/daily-claim", DailyClaim,
		"/api/daily-claim", claimBody())
	require.Equal(t, http.StatusOK, w.Code)

	var resp claimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 15.0, resp.Reward)
	assert.Equal(t, uint(1), resp.ConsecutiveDays)
	assert.Equal(t, 65.0, resp.EnbBalance)
}

func TestDailyClaimRaceDetectedUnderLock(t *testing.T) {
	app, mock, _ := newTestApp(t)
	yesterday := time.Now().AddDate(0, 0, -1)
	now := time.Now()
	before := enbapi.Account{
		Id:                 1,
		WalletAddress:      testWallet,
		MembershipLevel:    enbapi.MembershipBased,
		IsActivated:        true,
		LastDailyClaimTime: &yesterday,
	}
	after := before
	after.LastDailyClaimTime = &now
	// A parallel claim lands between the first read and the lock
	mock.ExpectQuery(".*").WillReturnRows(accountRows(before))
	mock.ExpectBegin()
	mock.ExpectQuery(".*").WillReturnRows(accountRows(after))
	mock.ExpectRollback()

	w := perform(app, http.MethodPost, "/api/daily-claim", DailyClaim,
		"/api/daily-claim", claimBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already claimed today")
	assert.NoError(t, mock.ExpectationsWereMet())
}
