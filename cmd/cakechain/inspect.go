package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiramisu-Cake/cakechain/chain"
	"github.com/Tiramisu-Cake/cakechain/config"
	"github.com/Tiramisu-Cake/cakechain/statestore"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the genesis constants of a configuration",
	Long: `Load a configuration and print the chain constants it commits to:
the genesis block hash, the genesis state root, and the allocation.

When the configuration enables a block archive, the archive is opened
with the configured backend and the genesis block is written to it.`,
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	alloc, err := cfg.Genesis.Allocation()
	if err != nil {
		return err
	}

	opts := []chain.Option{chain.WithChainID(cfg.Chain.ID)}
	if err := cfg.EnsureDataDirs(); err != nil {
		return err
	}
	store, err := cfg.BlockStore.Open()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, chain.WithBlockStore(store))
	}

	engine := chain.New(alloc, opts...)

	fmt.Printf("Chain ID:     %d\n", engine.ChainID())
	fmt.Printf("Genesis hash: %s\n", engine.GenesisHash())
	fmt.Printf("State root:   %s\n", engine.StateRoot())
	fmt.Printf("Accounts:     %d\n", len(engine.Accounts()))
	for _, acct := range engine.Accounts() {
		fmt.Printf("  %s  balance=%d nonce=%d\n", acct.Address, acct.Balance, acct.Nonce)
	}
	if store != nil {
		fmt.Printf("Archive:      %s, heights %d-%d\n", cfg.BlockStore.Backend, store.Base(), store.Height())
	}

	return nil
}

var rootHashCmd = &cobra.Command{
	Use:   "root",
	Short: "Print the state root of the configured allocation",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		alloc, err := cfg.Genesis.Allocation()
		if err != nil {
			return err
		}
		fmt.Println(statestore.FromAllocation(alloc).Root())
		return nil
	},
}
