package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tarancss/educertify/dashboard"
)

var (
	issueForm  dashboard.IssueForm
	revokeForm dashboard.RevokeForm
)

var initIssuerCmd = &cobra.Command{
	Use:   "init-issuer",
	Short: "Initialize the connected account as an issuer",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()

		hash, err := c.InitializeIssuer(ctx)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a certificate to a student",
	Long: `Issue a certificate to a student, dated now.

All of --student, --course, --issuer and --url are required.`,
	RunE: runIssue,
}

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke a certificate of a student",
	RunE:  runRevoke,
}

func init() {
	issueCmd.Flags().StringVar(&issueForm.StudentAddress, "student", "", "student account address")
	issueCmd.Flags().StringVar(&issueForm.CourseName, "course", "", "course name")
	issueCmd.Flags().StringVar(&issueForm.IssuerName, "issuer", "", "issuer name")
	issueCmd.Flags().StringVar(&issueForm.CertURL, "url", "", "certificate image url")

	revokeCmd.Flags().StringVar(&revokeForm.StudentAddress, "student", "", "student account address")
	revokeCmd.Flags().StringVar(&revokeForm.CertID, "id", "", "certificate id")
}

func runIssue(cmd *cobra.Command, args []string) error {
	c, ctx, cancel := newClient(cmd)
	defer cancel()

	hash, err := c.Issue(ctx, issueForm)
	if err != nil {
		return err
	}
	fmt.Println(hash)

	// the server celebrates each issuance until told otherwise
	return c.EndCelebration(ctx)
}

func runRevoke(cmd *cobra.Command, args []string) error {
	c, ctx, cancel := newClient(cmd)
	defer cancel()

	hash, err := c.Revoke(ctx, revokeForm)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
