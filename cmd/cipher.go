package cmd

import (
	"fmt"
	"strings"

	"github.com/encodeous/netsim/cipher"
	"github.com/spf13/cobra"
)

var (
	cipherKey    string
	cipherMatrix bool
)

var cipherCmd = &cobra.Command{
	Use:     "cipher",
	Short:   "Playfair encryption and decryption",
	GroupID: "sim",
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt <text>",
	Short: "Encrypts text with the Playfair cipher",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ct, err := cipher.Encrypt(strings.Join(args, " "), cipherKey)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if cipherMatrix {
			for _, row := range cipher.KeyMatrix(cipherKey).Rows() {
				fmt.Fprintln(out, strings.Join(strings.Split(row, ""), " "))
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, ct)
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <text>",
	Short: "Decrypts Playfair ciphertext",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pt, err := cipher.Decrypt(args[0], cipherKey)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pt)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cipherCmd)
	cipherCmd.AddCommand(encryptCmd, decryptCmd)

	cipherCmd.PersistentFlags().StringVarP(&cipherKey, "key", "k", "", "Playfair key")
	_ = cipherCmd.MarkPersistentFlagRequired("key")
	encryptCmd.Flags().BoolVarP(&cipherMatrix, "matrix", "m", false, "Print the key matrix")
}
