// Command embertree builds the distribution trees consumed by the claim and
// multiplier engines. It reads a JSON entitlement list, prints the commitment
// root, and emits a membership proof per entry so operators can hand each
// recipient their claim material.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"ashforge/config"
	"ashforge/merkleproof"
	"ashforge/native/claims"
	"ashforge/native/ember"
)

type proofOut struct {
	Leaf   string   `json:"leaf"`
	Hashes []string `json:"hashes"`
	Index  uint64   `json:"index"`
}

type treeOut struct {
	Root    string     `json:"root"`
	Entries []proofOut `json:"entries"`
}

func main() {
	root := &cobra.Command{
		Use:   "embertree",
		Short: "Build distribution trees and membership proofs",
	}
	root.AddCommand(windowCmd(), bitsCmd(), unlockCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func windowCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Build a window-claim tree from {epochId, recipient, amount} entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var entries []struct {
				EpochID   uint64 `json:"epochId"`
				Recipient string `json:"recipient"`
				Amount    string `json:"amount"`
			}
			if err := readEntries(input, &entries); err != nil {
				return err
			}
			leaves := make([][]byte, 0, len(entries))
			for i, e := range entries {
				recipient, err := config.ParseAddress(e.Recipient)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				amount, err := parsePositive(e.Amount)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				leaves = append(leaves, claims.EncodeWindowClaim(e.EpochID, recipient, amount))
			}
			return emit(cmd, leaves)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "path to the entitlement JSON file")
	cmd.MarkFlagRequired("input")
	return cmd
}

func bitsCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "bits",
		Short: "Build a bitmap-claim tree from {recipient, mask} entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var entries []struct {
				Recipient string `json:"recipient"`
				Mask      string `json:"mask"`
			}
			if err := readEntries(input, &entries); err != nil {
				return err
			}
			leaves := make([][]byte, 0, len(entries))
			for i, e := range entries {
				recipient, err := config.ParseAddress(e.Recipient)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				mask, err := parsePositive(e.Mask)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				leaves = append(leaves, claims.EncodeBitClaim(recipient, mask))
			}
			return emit(cmd, leaves)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "path to the entitlement JSON file")
	cmd.MarkFlagRequired("input")
	return cmd
}

func unlockCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Build a multiplier-unlock tree from {principal, numerator} entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var entries []struct {
				Principal string `json:"principal"`
				Numerator string `json:"numerator"`
			}
			if err := readEntries(input, &entries); err != nil {
				return err
			}
			leaves := make([][]byte, 0, len(entries))
			for i, e := range entries {
				principal, err := config.ParseAddress(e.Principal)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				numerator, err := parsePositive(e.Numerator)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				if numerator.BitLen() > 128 {
					return fmt.Errorf("entry %d: numerator exceeds 128 bits", i)
				}
				leaves = append(leaves, ember.EncodeMultiplierUnlock(principal, numerator))
			}
			return emit(cmd, leaves)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "path to the entitlement JSON file")
	cmd.MarkFlagRequired("input")
	return cmd
}

func readEntries(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func parsePositive(s string) (*big.Int, error) {
	v, err := config.ParseAmount(s)
	if err != nil {
		return nil, err
	}
	if v.Sign() == 0 {
		return nil, fmt.Errorf("must be positive: %q", s)
	}
	return v, nil
}

func emit(cmd *cobra.Command, leaves [][]byte) error {
	tree, err := merkleproof.NewTree(leaves)
	if err != nil {
		return err
	}
	treeRoot := tree.Root()
	out := treeOut{
		Root:    "0x" + hex.EncodeToString(treeRoot[:]),
		Entries: make([]proofOut, 0, len(leaves)),
	}
	for _, leaf := range leaves {
		proof, err := tree.Prove(leaf)
		if err != nil {
			return err
		}
		hashes := make([]string, len(proof.Hashes))
		for i, h := range proof.Hashes {
			hashes[i] = "0x" + hex.EncodeToString(h)
		}
		out.Entries = append(out.Entries, proofOut{
			Leaf:   "0x" + hex.EncodeToString(leaf),
			Hashes: hashes,
			Index:  proof.Index,
		})
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
