package cli

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/mobile-next/galleryview/commands"
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Gallery server commands",
	Long:  `Commands for inspecting the gallery server that supplies images to the viewer.`,
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List images on a gallery server",
	Long:  `Fetches the image list from a gallery server's /api/images endpoint.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		response := commands.GalleryListCommand(commands.GalleryListRequest{URL: galleryURL})
		printJson(response)
		if response.Status == "error" {
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

var galleryFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download an image from a gallery server",
	Long:  `Downloads a full image, or its thumbnail with --thumbnail. The payload is printed base64 encoded unless --output names a file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := commands.GalleryClient(galleryURL)
		if err != nil {
			response := commands.NewErrorResponse(err)
			printJson(response)
			return fmt.Errorf("%s", response.Error)
		}

		response := commands.GalleryFetchCommand(client, commands.GalleryFetchRequest{
			ID:        galleryImageID,
			Thumbnail: galleryThumbnail,
		})
		if response.Status == "ok" && galleryOutput != "" {
			response = saveFetched(response, galleryOutput)
		}

		printJson(response)
		if response.Status == "error" {
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

// saveFetched writes the payload of a fetch response to path
func saveFetched(response *commands.CommandResponse, path string) *commands.CommandResponse {
	fetched := response.Data.(commands.GalleryFetchResponse)
	data, err := base64.StdEncoding.DecodeString(fetched.Data)
	if err != nil {
		return commands.NewErrorResponse(fmt.Errorf("failed to decode image: %w", err))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return commands.NewErrorResponse(fmt.Errorf("failed to write %s: %w", path, err))
	}

	fetched.Data = ""
	fetched.Path = path
	return commands.NewSuccessResponse(fetched)
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(galleryListCmd)

	galleryListCmd.Flags().StringVar(&galleryURL, "url", "", "gallery server address, e.g. 192.168.1.10:3000")
	_ = galleryListCmd.MarkFlagRequired("url")

	galleryCmd.AddCommand(galleryFetchCmd)
	galleryFetchCmd.Flags().StringVar(&galleryURL, "url", "", "gallery server address, e.g. 192.168.1.10:3000")
	galleryFetchCmd.Flags().IntVar(&galleryImageID, "id", 0, "image id")
	galleryFetchCmd.Flags().BoolVar(&galleryThumbnail, "thumbnail", false, "fetch the thumbnail instead of the full image")
	galleryFetchCmd.Flags().StringVarP(&galleryOutput, "output", "o", "", "write the image to this file")
	_ = galleryFetchCmd.MarkFlagRequired("url")
	_ = galleryFetchCmd.MarkFlagRequired("id")
}
