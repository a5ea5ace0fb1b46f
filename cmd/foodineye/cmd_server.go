package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/foodineye/config"
	"github.com/shashiranjanraj/foodineye/internal/bootstrap"
	"github.com/shashiranjanraj/foodineye/internal/kernel"
	"github.com/shashiranjanraj/foodineye/internal/server"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/cache"
)

var (
	servePort   string
	serveMemory bool
)

// foodineye serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			config.Set("APP_PORT", servePort)
		}
		if serveMemory {
			config.Set("STORE_DRIVER", "memory")
		}
		return server.Start()
	},
}

// foodineye route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Routes do not depend on live connections; wire over memory.
		c := bootstrap.Build(bootstrap.Deps{
			Collections: bootstrap.MemoryCollections(),
			Cache:       cache.NewMemory(),
			Tokens:      bootstrap.TokenManager(),
			Hasher:      auth.NewHasher(0),
			Images:      bootstrap.ImageProcessor(),
		})
		infos := kernel.NewHTTPKernel(c).Router.Routes()
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No named routes registered.")
			return nil
		}

		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides APP_PORT)")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "use the in-memory document store")
	routeListCmd.SetOut(os.Stdout)
}
