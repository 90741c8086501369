package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"value-program-sol/internal/consts"
	valueclient "value-program-sol/internal/logic/client"
	"value-program-sol/internal/pkg/logger"
	"value-program-sol/internal/types"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
)

func main() {
	var (
		opcode  uint8
		value   uint64
		program string
		keypair string
		rpcURL  string
		timeout time.Duration
	)

	var rootCmd = &cobra.Command{
		Use:   "invoke",
		Short: "Build and send instructions to the value program",
	}

	var encodeCmd = &cobra.Command{
		Use:   "encode",
		Short: "Print instruction data as hex and base58",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := valueclient.EncodeInstructionData(opcode, value)
			if err != nil {
				return err
			}
			fmt.Printf("hex:    %s\n", hex.EncodeToString(data))
			fmt.Printf("base58: %s\n", base58.Encode(data))
			return nil
		},
	}

	var sendCmd = &cobra.Command{
		Use:   "send",
		Short: "Send one instruction signed by --keypair and wait for confirmation",
		RunE: func(cmd *cobra.Command, args []string) error {
			programID, err := types.TryPubkeyFromBase58(program)
			if err != nil {
				return fmt.Errorf("invalid --program: %w", err)
			}
			signer, err := valueclient.LoadKeypair(keypair)
			if err != nil {
				return err
			}
			data, err := valueclient.EncodeInstructionData(opcode, value)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			sender := valueclient.NewSender(client.NewClient(rpcURL))
			ix := valueclient.NewInstruction(programID, data)
			sig, err := sender.Send(ctx, signer, ix)
			if err != nil {
				return err
			}
			logger.Infof("[invoke] sent %s, waiting for confirmation", sig)
			if err := sender.WaitConfirmed(ctx, sig, time.Second); err != nil {
				return err
			}
			fmt.Println(sig)
			return nil
		},
	}

	for _, c := range []*cobra.Command{encodeCmd, sendCmd} {
		c.Flags().Uint8Var(&opcode, "opcode", 0, "Instruction opcode (first byte)")
		c.Flags().Uint64Var(&value, "value", 0, "u64 parameter, encoded little-endian")
	}
	sendCmd.Flags().StringVar(&program, "program", consts.DefaultProgramID, "Program id (base58)")
	sendCmd.Flags().StringVar(&keypair, "keypair", os.ExpandEnv("$HOME/.config/solana/id.json"), "Signer keypair file")
	sendCmd.Flags().StringVar(&rpcURL, "rpc", rpc.DevnetRPCEndpoint, "Solana RPC endpoint")
	sendCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Overall send + confirm timeout")

	rootCmd.AddCommand(encodeCmd, sendCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
