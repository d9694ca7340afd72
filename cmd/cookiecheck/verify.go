package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/layer-3/cookiecheck/core"
	transport "github.com/layer-3/cookiecheck/transport/http"
	"github.com/spf13/cobra"
)

var (
	liAt       string
	jsessionID string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify one cookie pair and print the result as JSON",
	Args:  cobra.NoArgs,
	RunE:  verifyOnce,
}

func init() {
	verifyCmd.Flags().StringVar(&liAt, "li-at", "", "li_at session cookie")
	verifyCmd.Flags().StringVar(&jsessionID, "jsessionid", "", "JSESSIONID cookie")
}

func verifyOnce(cmd *cobra.Command, args []string) error {
	a, err := build(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.close(ctx)
	}()

	outcome := a.service.Verify(cmd.Context(), core.Request{
		Cookies: core.CookiePair{Session: liAt, Secondary: jsessionID},
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(transport.NewVerifyResponse(outcome))
}
