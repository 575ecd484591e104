package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/contract"
	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/ux"
)

type endpointList struct {
	Version   string              `json:"version" yaml:"version"`
	Endpoints []contract.Endpoint `json:"endpoints" yaml:"endpoints"`
}

func (l endpointList) Table() *ux.Table {
	t := ux.NewTable("METHOD", "PATH", "OPERATION", "AUTH")
	t.Title = "Admin API " + l.Version
	for _, e := range l.Endpoints {
		auth := "token"
		if e.Public {
			auth = "public"
		}
		t.AddRow(e.Method, e.Path, e.OperationID, auth)
	}
	return t
}

func newContractCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Show the admin API operations this client calls",
		Long: `List the endpoints of the bundled OpenAPI document. With
api.strict_contract enabled, requests outside this list are refused
before they reach the network.

Use --raw to print the document itself.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if raw {
				_, err := cmd.OutOrStdout().Write(contract.Raw())
				return err
			}
			out, _, err := localOutput(cmd)
			if err != nil {
				return err
			}
			c, err := contract.Load(cmd.Context())
			if err != nil {
				return errors.Wrap(errors.ErrCodeNotInContract, "failed to load the API contract", err)
			}
			return out.Format(endpointList{Version: c.Version(), Endpoints: c.Endpoints()})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the OpenAPI document")
	return cmd
}
