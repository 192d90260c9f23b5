package relayer

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/chenzhijie/go-web3"
	"github.com/chenzhijie/go-web3/types"
	"github.com/ethereum/go-ethereum/common"
)

// The contract only exposes the two methods the platform relays.
const contractAbi = `[{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"dailyClaim","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"internalType":"address","name":"user","type":"address"},{"internalType":"uint8","name":"level","type":"uint8"}],"name":"upgradeMembership","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

// Client submits contract calls from the server-held relayer wallet,
// paying gas itself. Every submit blocks until the tx is mined; a relay
// is never retried, resubmitting on-chain risks double-submission.
type Client struct {
	rpcUrl       string
	chainId      int64
	privateKey   string
	contractAddr string
}

func New() *Client {
	chainId, err := strconv.ParseInt(os.Getenv("CHAIN_ID"), 10, 64)
	if err != nil {
		chainId = 8453
	}
	return &Client{
		rpcUrl:       os.Getenv("RPC_URL"),
		chainId:      chainId,
		privateKey:   os.Getenv("RELAYER_PRIVATE_KEY"),
		contractAddr: os.Getenv("ENB_CONTRACT_ADDRESS"),
	}
}

// SubmitDailyClaim calls dailyClaim(address) and returns the tx hash
func (c *Client) SubmitDailyClaim(address string) (string, error) {
	return c.submit("dailyClaim", common.HexToAddress(address))
}

// SubmitMembershipUpgrade calls upgradeMembership(address, uint8)
func (c *Client) SubmitMembershipUpgrade(address string, level uint8) (string, error) {
	return c.submit("upgradeMembership", common.HexToAddress(address), level)
}

func (c *Client) submit(method string, args ...interface{}) (string, error) {
	if c.privateKey == "" {
		return "", errors.New("RELAYER_PRIVATE_KEY is not set")
	}
	if c.contractAddr == "" {
		return "", errors.New("ENB_CONTRACT_ADDRESS is not set")
	}
	web3Conn, err := web3.NewWeb3(c.rpcUrl)
	if err != nil {
		return "", err
	}
	web3Conn.Eth.SetChainId(c.chainId)
	if err = web3Conn.Eth.SetAccount(c.privateKey); err != nil {
		return "", err
	}
	nonce, err := web3Conn.Eth.GetNonce(web3Conn.Eth.Address(), nil)
	if err != nil {
		return "", err
	}
	contract, err := web3Conn.Eth.NewContract(contractAbi, c.contractAddr)
	if err != nil {
		return "", err
	}
	data, err := contract.EncodeABI(method, args...)
	if err != nil {
		return "", err
	}
	call := &types.CallMsg{
		From: web3Conn.Eth.Address(),
		To:   common.HexToAddress(c.contractAddr),
		Data: data,
		Gas:  types.NewCallMsgBigInt(big.NewInt(types.MAX_GAS_LIMIT)),
	}
	gasLimit, err := web3Conn.Eth.EstimateGas(call)
	if err != nil {
		return "", err
	}
	gasPrice, err := web3Conn.Eth.SuggestGasTipCap()
	if err != nil {
		return "", err
	}
	gasPriceBase, err := web3Conn.Eth.EstimateFee()
	if err != nil {
		return "", err
	}
	gasPrice.Add(gasPriceBase.MaxPriorityFeePerGas, gasPriceBase.BaseFee)
	receipt, err := web3Conn.Eth.SyncSendRawTransaction(
		common.HexToAddress(c.contractAddr),
		big.NewInt(0),
		nonce,
		gasLimit,
		gasPrice,
		data,
	)
	if err != nil {
		return "", err
	}
	fmt.Println("[[Relay]] "+method+" tx hash:", receipt.TxHash.Hex())
	return receipt.TxHash.Hex(), nil
}
