package evm

import (
	"context"
	"math/big"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var addressCheck = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Client wraps read-only chain access for the /core routes
type Client struct {
	url string
}

func New(url string) *Client {
	return &Client{url: url}
}

func IsValidAddress(address string) bool {
	return addressCheck.MatchString(address)
}

func (c *Client) GetBalance(address string) (*big.Int, error) {
	conn, err := ethclient.Dial(c.url)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.BalanceAt(context.Background(), common.HexToAddress(address), nil)
}

func (c *Client) GetGasPrice() (*big.Int, error) {
	conn, err := ethclient.Dial(c.url)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.SuggestGasPrice(context.Background())
}
