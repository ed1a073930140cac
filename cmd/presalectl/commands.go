package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Soar-Robotics/SoarchainPresale/internal/blockchain"
	"github.com/Soar-Robotics/SoarchainPresale/internal/config"
	"github.com/Soar-Robotics/SoarchainPresale/internal/contribution"
	"github.com/Soar-Robotics/SoarchainPresale/internal/utils"
	"github.com/Soar-Robotics/SoarchainPresale/internal/wallet"
	"github.com/spf13/cobra"
)

type cli struct {
	configPath string
	verbose    bool

	cfg *config.ClientConfig
	log *utils.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "presalectl",
		Short:         "Contribute XRP to the Soarchain presale",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClientConfig(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log = utils.NopLogger()
			if c.verbose {
				c.log = utils.GetLogger()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "presale.json", "optional JSON config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(c.connectCmd(), c.disconnectCmd(), c.statusCmd(), c.contributeCmd(), c.progressCmd())
	return root
}

func (c *cli) session(opts ...wallet.Option) (*wallet.Session, error) {
	provider := &wallet.PromptProvider{In: os.Stdin, Out: os.Stdout}
	opts = append(opts, wallet.WithLogger(c.log))
	return wallet.NewSession(provider, wallet.NewFileStorage(c.cfg.WalletStore), opts...)
}

func (c *cli) dial(ctx context.Context) (contribution.Ledger, error) {
	client, err := blockchain.Dial(ctx, c.cfg.LedgerURL, blockchain.Options{
		RequestTimeout: c.cfg.LedgerTimeout,
		Secret:         c.cfg.WalletSeed,
		NodeSign:       c.cfg.NodeSign,
		Logger:         c.log,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// accountExists requires a freshly connected account to be funded on the
// validated ledger.
func (c *cli) accountExists(ctx context.Context, address string) error {
	client, err := blockchain.Dial(ctx, c.cfg.LedgerURL, blockchain.Options{
		RequestTimeout: c.cfg.LedgerTimeout,
		Logger:         c.log,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.AccountInfo(ctx, address, "validated")
	if err != nil {
		return err
	}
	c.log.Debug("Account info", "address", address, "balance_drops", info.AccountData.Balance)
	return nil
}

func (c *cli) connectCmd() *cobra.Command {
	var skipCheck bool
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect a wallet address",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []wallet.Option
			if !skipCheck {
				opts = append(opts, wallet.WithAccountCheck(c.accountExists))
			}
			s, err := c.session(opts...)
			if err != nil {
				return err
			}
			s.Subscribe(func(snap wallet.Snapshot) { fmt.Fprintln(cmd.OutOrStdout(), snap.Label) })

			if err := s.Connect(cmd.Context()); err != nil {
				if errors.Is(err, wallet.ErrConnectFailed) {
					c.log.Warn("Connect failed", "error", err)
					return errors.New(wallet.ConnectFailedMessage)
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "do not verify the account on the ledger")
	return cmd
}

func (c *cli) disconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the connected wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}
			if err := s.Disconnect(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Snapshot().Label)
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the wallet connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Snapshot().Label)
			return nil
		},
	}
}

func (c *cli) contributeCmd() *cobra.Command {
	var (
		amount float64
		email  string
	)
	cmd := &cobra.Command{
		Use:   "contribute",
		Short: "Send XRP to the presale and record the contribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.RequireDestination(); err != nil {
				return err
			}
			s, err := c.session()
			if err != nil {
				return err
			}
			flow := contribution.NewFlow(contribution.Config{
				Destination:              c.cfg.DestinationAddress,
				DestinationTag:           c.cfg.DestinationTag,
				RecordBeforeConfirmation: c.cfg.RecordBeforeConfirmation,
			}, s, c.dial, contribution.NewBackend(c.cfg.BackendURL, nil), c.log)
			flow.OnStatus(func(st contribution.Status) {
				if st.Stage != contribution.StageFailed {
					fmt.Fprintln(cmd.OutOrStdout(), st.Message)
				}
			})

			res, err := flow.Submit(cmd.Context(), amount, email)
			if err != nil {
				return describe(err)
			}
			if res.TransactionID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Transaction: %s\n", res.TransactionID)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "XRP to contribute (at least 1)")
	cmd.Flags().StringVar(&email, "email", "", "optional contact email")
	return cmd
}

func (c *cli) progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show total XRP raised",
		RunE: func(cmd *cobra.Command, args []string) error {
			totals, err := contribution.NewBackend(c.cfg.BackendURL, nil).Totals(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Raised: %g XRP from %d contributions\n", totals.TotalXRP, len(totals.Contributions))
			if c.cfg.GoalXRP > 0 {
				fmt.Fprintf(out, "Progress: %.1f%% of %g XRP\n", contribution.Progress(totals.TotalXRP, c.cfg.GoalXRP), c.cfg.GoalXRP)
			}
			return nil
		},
	}
}

func describe(err error) error {
	var recErr *contribution.RecordingError
	switch {
	case errors.Is(err, contribution.ErrNoWalletConnected):
		return errors.New("Please connect your wallet first.")
	case errors.Is(err, contribution.ErrInvalidAmount):
		return errors.New("Please enter a valid XRP amount (minimum 1 XRP, at most 6 decimal places).")
	case errors.Is(err, contribution.ErrInvalidEmail):
		return errors.New("Please enter a valid email address or leave it empty.")
	case errors.As(err, &recErr) && recErr.Recorded:
		return fmt.Errorf("Your contribution was recorded, but the confirmation email failed: %s", recErr.Message)
	default:
		return fmt.Errorf("Transaction failed: %v", err)
	}
}
