// Command mfsutil inspects and manipulates MFS disk images, built as a
// cobra command tree instead of a hand-rolled os.Args switch.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/renameio"
	"github.com/spf13/cobra"

	"github.com/xfix/moros"
)

var rootCmd = &cobra.Command{
	Use:   "mfsutil",
	Short: "Inspect and manipulate MFS disk images",
}

var blockCount uint32

func mountImage(path string) error {
	dev, err := moros.OpenFileDevice(path)
	if err != nil {
		return err
	}
	moros.Mount(dev, moros.WithBlockCount(blockCount))
	return nil
}

var mkfsCmd = &cobra.Command{
	Use:   "mkfs IMAGE",
	Short: "Create and format a new MFS disk image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		total := moros.DataAddr(blockCount) + blockCount
		out, err := renameio.TempFile("", path)
		if err != nil {
			return fmt.Errorf("creating image: %w", err)
		}
		defer out.Cleanup()

		if _, err := out.Write(make([]byte, int64(total)*moros.BlockSize)); err != nil {
			return fmt.Errorf("sizing image: %w", err)
		}
		if err := out.CloseAtomicallyReplace(); err != nil {
			return fmt.Errorf("finalizing image: %w", err)
		}

		dev, err := moros.OpenFileDevice(path)
		if err != nil {
			return err
		}
		if err := moros.Format(dev, moros.WithBlockCount(blockCount), moros.WithClock(func() int64 { return time.Now().Unix() })); err != nil {
			return fmt.Errorf("formatting image: %w", err)
		}
		fmt.Printf("formatted %s with %d data blocks\n", path, blockCount)
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls IMAGE [PATH]",
	Short: "List directory entries",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mountImage(args[0]); err != nil {
			return err
		}
		path := "/"
		if len(args) == 2 {
			path = args[1]
		}

		dir, err := moros.OpenDir(path)
		if err != nil {
			return err
		}
		rd, err := dir.Read()
		if err != nil {
			return err
		}
		for {
			entry, ok, err := rd.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			fmt.Printf("%-6s %8d %s\n", entry.Kind, entry.Size, entry.Name)
		}
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat IMAGE PATH",
	Short: "Print a file's contents to stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mountImage(args[0]); err != nil {
			return err
		}
		f, err := moros.OpenFile(args[1])
		if err != nil {
			return err
		}
		s, err := f.ReadToString()
		if err != nil {
			return err
		}
		_, err = os.Stdout.WriteString(s)
		return err
	},
}

var writeCmd = &cobra.Command{
	Use:   "write IMAGE PATH HOSTFILE",
	Short: "Write a host file's contents into an MFS file, creating it if needed",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mountImage(args[0]); err != nil {
			return err
		}

		data, err := os.ReadFile(args[2])
		if err != nil {
			return fmt.Errorf("reading host file: %w", err)
		}

		f, err := moros.OpenFile(args[1])
		if err != nil {
			f, err = moros.CreateFile(args[1])
			if err != nil {
				return err
			}
		}
		return f.Write(data)
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir IMAGE PATH",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mountImage(args[0]); err != nil {
			return err
		}
		_, err := moros.CreateDir(args[1])
		return err
	},
}

var recursive bool

var rmCmd = &cobra.Command{
	Use:   "rm IMAGE PATH",
	Short: "Remove a directory entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mountImage(args[0]); err != nil {
			return err
		}
		parent, err := moros.OpenDir(moros.Dirname(args[1]))
		if err != nil {
			return err
		}
		name := moros.Filename(args[1])
		if recursive {
			return parent.DeleteRecursive(name)
		}
		return parent.DeleteEntry(name)
	},
}

var statCmd = &cobra.Command{
	Use:   "stat IMAGE",
	Short: "Show superblock information",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := mountImage(args[0]); err != nil {
			return err
		}
		stamp, err := moros.FormatTime()
		if err != nil {
			return err
		}
		fmt.Printf("magic:        %s\n", moros.Magic)
		fmt.Printf("block count:  %d\n", blockCount)
		if stamp != 0 {
			fmt.Printf("formatted at: %s\n", time.Unix(stamp, 0).Format(time.RFC1123))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Uint32VarP(&blockCount, "blocks", "b", moros.MaxBlocks, "number of data blocks covered by the bitmap")
	rmCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "also delete the entry's contents")

	rootCmd.AddCommand(mkfsCmd, lsCmd, catCmd, writeCmd, mkdirCmd, rmCmd, statCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
