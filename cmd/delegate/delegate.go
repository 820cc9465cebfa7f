package delegate

import (
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("delegate",
		newAddress(),
		newStatus(),
		newSetup(),
		newLogout(),
	)
}
