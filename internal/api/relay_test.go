package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enbapp/internal/enbapi"
)

func TestRelayDailyClaimSuccess(t *testing.T) {
	app, mock, relayer := newTestApp(t)
	yesterday := time.Now().AddDate(0, 0, -1)
	account := enbapi.Account{
		Id:                 1,
		WalletAddress:      testWallet,
		MembershipLevel:    enbapi.MembershipBased,
		IsActivated:        true,
		EnbBalance:         30,
		ConsecutiveDays:    1,
		LastDailyClaimTime: &yesterday,
	}
	mock.ExpectQuery(".*").WillReturnRows(accountRows(account))
	mock.ExpectBegin()
	mock.ExpectQuery(".*").WillReturnRows(accountRows(account))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(".*").WillReturnRows(sqlmock.NewRows([]string{"txid"}).AddRow(3))
	mock.ExpectCommit()

	w := perform(app, http.MethodPost, "/relay/daily-claim", RelayDailyClaim,
		"/relay/daily-claim", fmt.Sprintf(`{"user":%q}`, testWallet))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success         bool    `json:"success"`
		TxHash          string  `json:"txHash"`
		Reward          float64 `json:"reward"`
		ConsecutiveDays uint    `json:"consecutive_days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "0xrelayedtx", resp.TxHash)
	assert.Equal(t, 20.0, resp.Reward)
	assert.Equal(t, uint(2), resp.ConsecutiveDays)
	assert.Equal(t, []string{testWallet}, relayer.claims)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelayDailyClaimRelayerError(t *testing.T) {
	app, mock, relayer := newTestApp(t)
	relayer.err = errors.New("nonce too low")
	mock.ExpectQuery(".*").WillReturnRows(accountRows(enbapi.Account{
		Id:              1,
		WalletAddress:   testWallet,
		MembershipLevel: enbapi.MembershipBased,
		IsActivated:     true,
	}))

	w := perform(app, http.MethodPost, "/relay/daily-claim", RelayDailyClaim,
		"/relay/daily-claim", fmt.Sprintf(`{"user":%q}`, testWallet))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// The raw relayer error stays in the logs, not in the response
	assert.Contains(t, w.Body.String(), "relayer call failed")
	assert.NotContains(t, w.Body.String(), "nonce too low")
}

func TestRelayDailyClaimAlreadyClaimed(t *testing.T) {
	app, mock, relayer := newTestApp(t)
	now := time.Now()
	mock.ExpectQuery(".*").WillReturnRows(accountRows(enbapi.Account{
		Id:                 1,
		WalletAddress:      testWallet,
		MembershipLevel:    enbapi.MembershipBased,
		IsActivated:        true,
		LastDailyClaimTime: &now,
	}))

	w := perform(app, http.MethodPost, "/relay/daily-claim", RelayDailyClaim,
		"/relay/daily-claim", fmt.Sprintf(`{"user":%q}`, testWallet))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, relayer.claims)
}

func TestRelayUpgradeMembershipBadTarget(t *testing.T) {
	app, _, _ := newTestApp(t)
	for _, target := range []int{0, 3} {
		w := perform(app, http.MethodPost, "/relay/upgrade-membership", RelayUpgradeMembership,
			"/relay/upgrade-membership",
			fmt.Sprintf(`{"user":%q,"targetLevel":%d}`, testWallet, target))
		assert.Equal(t, http.StatusBadRequest, w.Code, "targetLevel %d", target)
	}
}

func TestRelayUpgradeMembershipSuccess(t *testing.T) {
	app, mock, relayer := newTestApp(t)
	account := enbapi.Account{
		Id:              1,
		WalletAddress:   testWallet,
		MembershipLevel: enbapi.MembershipBased,
		IsActivated:     true,
	}
	mock.ExpectQuery(".*").WillReturnRows(accountRows(account))
	mock.ExpectBegin()
	mock.ExpectQuery(".*").WillReturnRows(accountRows(account))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := perform(app, http.MethodPost, "/relay/upgrade-membership", RelayUpgradeMembership,
		"/relay/upgrade-membership",
		fmt.Sprintf(`{"user":%q,"targetLevel":2}`, testWallet))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success         bool   `json:"success"`
		TxHash          string `json:"txHash"`
		MembershipLevel string `json:"membership_level"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, enbapi.MembershipLegendary, resp.MembershipLevel)
	assert.Equal(t, []uint8{2}, relayer.upgrades)
	assert.NoError(t, mock.ExpectationsWereMet())
}
