package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/foodineye/app/services"
	"github.com/shashiranjanraj/foodineye/config"
	"github.com/shashiranjanraj/foodineye/pkg/logger"
	"github.com/shashiranjanraj/foodineye/pkg/storage"
)

var s3Ext string

// foodineye s3:ls <prefix>
var s3ListCmd = &cobra.Command{
	Use:   "s3:ls [prefix]",
	Short: "List object keys under a prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		ctx := context.Background()

		var (
			disk storage.Disk
			err  error
		)
		if config.StorageS3Bucket() != "" {
			disk, err = storage.OpenS3(ctx)
		} else {
			disk, err = storage.Open(ctx, config.ImageDisk())
		}
		if err != nil {
			return err
		}

		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		objects := services.NewObjectStorageService(storage.NewFileStore(disk, logger.L))
		keys, err := objects.Keys(ctx, prefix, s3Ext)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

func init() {
	s3ListCmd.Flags().StringVar(&s3Ext, "ext", "", "only keys with this extension (e.g. json)")
}
