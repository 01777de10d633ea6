package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/sigcollect/internal/core/signing/interactor/device"
	"github.com/weisyn/sigcollect/pkg/types"
)

var mnemonicFlags struct {
	words      int
	passphrase string
	kind       string
}

var mnemonicCmd = &cobra.Command{
	Use:   "mnemonic",
	Short: "生成助记词并输出其因子源ID",
	RunE: func(cmd *cobra.Command, args []string) error {
		strength := device.Mnemonic24Words
		switch mnemonicFlags.words {
		case 24:
		case 12:
			strength = device.Mnemonic12Words
		default:
			return fmt.Errorf("助记词长度只能为 12 或 24: %d", mnemonicFlags.words)
		}
		kind, err := types.ParseFactorSourceKind(mnemonicFlags.kind)
		if err != nil {
			return err
		}

		mnemonic, err := device.GenerateMnemonic(strength)
		if err != nil {
			return err
		}
		passphrase := os.Getenv(mnemonicFlags.passphrase)
		keyring, err := device.NewKeyring(kind, mnemonic, passphrase)
		if err != nil {
			return err
		}
		defer keyring.Close()

		instance, err := keyring.DeriveInstance(types.NewDerivationPath(defaultNetworkID, types.EntityKindAccount, 0))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if globalFlags.OutputFormat == "json" {
			return renderJSON(out, map[string]string{
				"mnemonic":         mnemonic,
				"factor_source_id": keyring.FactorSourceID().String(),
				"first_account":    types.NewEntityAddress(types.EntityKindAccount, defaultNetworkID, instance.PublicKey).String(),
				"derivation_path":  instance.DerivationPath.String(),
			})
		}
		fmt.Fprintf(out, "助记词:     %s\n", mnemonic)
		fmt.Fprintf(out, "因子源ID:   %s\n", keyring.FactorSourceID())
		fmt.Fprintf(out, "首个账户:   %s (%s)\n",
			types.NewEntityAddress(types.EntityKindAccount, defaultNetworkID, instance.PublicKey), instance.DerivationPath)
		return nil
	},
}

func init() {
	mnemonicCmd.Flags().IntVar(&mnemonicFlags.words, "words", 24, "助记词长度: 12|24")
	mnemonicCmd.Flags().StringVar(&mnemonicFlags.passphrase, "passphrase-env", "SIGSIM_PASSPHRASE", "读取口令的环境变量")
	mnemonicCmd.Flags().StringVar(&mnemonicFlags.kind, "kind", "device", "因子源类别: device|off_device_mnemonic")
}
