// Package vault is the HTTP adapter for the external value-transfer
// collaborator. The engine treats any failure result as a hard error; this
// client maps non-2xx responses and transport errors accordingly.
package vault

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// Client talks to the value-transfer service backing payouts, mints, burns
// and staking.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a vault client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	Memo   string `json:"memo,omitempty"`
}

type mintRequest struct {
	To      string   `json:"to"`
	IDs     []string `json:"ids"`
	Amounts []string `json:"amounts"`
}

type burnRequest struct {
	From    string   `json:"from"`
	IDs     []string `json:"ids"`
	Amounts []string `json:"amounts"`
}

type stakeRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// Transfer moves fungible value between accounts.
func (c *Client) Transfer(from, to [20]byte, amount *big.Int, memo string) error {
	return c.post("/transfer", transferRequest{
		From:   encodeAddr(from),
		To:     encodeAddr(to),
		Amount: amount.String(),
		Memo:   memo,
	})
}

// Mint issues a single non-fungible or semi-fungible id.
func (c *Client) Mint(to [20]byte, id *big.Int, amount *big.Int) error {
	return c.BatchMint(to, []*big.Int{id}, []*big.Int{amount})
}

// BatchMint issues several ids in one collaborator call.
func (c *Client) BatchMint(to [20]byte, ids []*big.Int, amounts []*big.Int) error {
	return c.post("/mint/batch", mintRequest{
		To:      encodeAddr(to),
		IDs:     encodeAmounts(ids),
		Amounts: encodeAmounts(amounts),
	})
}

// BatchBurn destroys deposited token units.
func (c *Client) BatchBurn(from [20]byte, ids []*big.Int, amounts []*big.Int) error {
	return c.post("/burn/batch", burnRequest{
		From:    encodeAddr(from),
		IDs:     encodeAmounts(ids),
		Amounts: encodeAmounts(amounts),
	})
}

// Stake routes a payout into the staking program.
func (c *Client) Stake(recipient [20]byte, amount *big.Int) error {
	return c.post("/stake", stakeRequest{
		Recipient: encodeAddr(recipient),
		Amount:    amount.String(),
	})
}

func (c *Client) post(path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("vault: %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("vault: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

func encodeAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func encodeAmounts(values []*big.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = "0"
			continue
		}
		out[i] = v.String()
	}
	return out
}
