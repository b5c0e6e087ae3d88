package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/phamvy/chitieu/internal/category"
	"github.com/phamvy/chitieu/internal/cli"
	"github.com/phamvy/chitieu/internal/model"
	"github.com/phamvy/chitieu/internal/receipt"
	"github.com/phamvy/chitieu/internal/scan"
)

func scanCmd() *cobra.Command {
	var (
		dateFlag string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Scan a receipt photo into expenses",
		Long: `Extract line items from a receipt photo, categorize them, and queue them
as expenses. The photo is treated as temporary and is deleted once
processing finishes, whether it succeeds or not.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			imagePath := args[0]

			if _, err := os.Stat(imagePath); err != nil {
				return fmt.Errorf("cannot read image %s: %w", imagePath, err)
			}

			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			extractor, err := createExtractor(ctx)
			if err != nil {
				return err
			}
			defer extractor.Close()

			patterns, err := loadPatterns(ctx, store)
			if err != nil {
				return err
			}

			flow := scan.NewFlow(extractor, receipt.NewParser(), category.NewNormalizer(),
				patterns, scan.OSImageStore{}, localEnqueuer{store: store}, imagePath)

			fmt.Println(cli.InfoStyle.Render("Reading receipt..."))
			if err := flow.Process(ctx); err != nil {
				return err
			}

			if err := reviewLoop(ctx, flow, date, yes); err != nil {
				return err
			}

			pending, err := store.PendingCount(ctx)
			if err == nil && pending > 0 {
				fmt.Println(cli.SubtleStyle.Render(
					fmt.Sprintf("%d mutation(s) waiting to sync. Run 'chitieu sync' when online.", pending)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "expense date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "save all items without review")

	return cmd
}

// reviewLoop shows the scanned items and lets the user drop lines or edit
// categories before saving. With --yes it saves immediately.
func reviewLoop(ctx context.Context, flow *scan.Flow, date time.Time, yes bool) error {
	printItems(flow.Items())

	if yes {
		return saveItems(ctx, flow, date)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("[s]ave, [d]rop <n>, [c]ategory <n> <name>, [q]uit: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return flow.Cancel(true)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "s", "save":
			return saveItems(ctx, flow, date)

		case "d", "drop":
			item, err := itemAt(flow, fields, 2)
			if err != nil {
				fmt.Println(cli.ErrorStyle.Render(err.Error()))
				continue
			}
			if err := flow.RemoveItem(item.ID); err != nil {
				fmt.Println(cli.ErrorStyle.Render(err.Error()))
				continue
			}
			if len(flow.Items()) == 0 {
				fmt.Println("All items dropped, nothing to save.")
				return flow.Cancel(true)
			}
			printItems(flow.Items())

		case "c", "category":
			item, err := itemAt(flow, fields, 3)
			if err != nil {
				fmt.Println(cli.ErrorStyle.Render(err.Error()))
				continue
			}
			edited := *item
			edited.Category = strings.Join(fields[2:], " ")
			if err := flow.UpdateItem(item.ID, edited); err != nil {
				fmt.Println(cli.ErrorStyle.Render(err.Error()))
				continue
			}
			printItems(flow.Items())

		case "q", "quit":
			if err := flow.Cancel(false); err != nil {
				if !confirm("Discard the scanned items?") {
					continue
				}
				return flow.Cancel(true)
			}
			return nil

		default:
			fmt.Println(cli.SubtleStyle.Render("unrecognized command"))
		}
	}
}

func itemAt(flow *scan.Flow, fields []string, minArgs int) (*model.ScannedItem, error) {
	if len(fields) < minArgs {
		return nil, fmt.Errorf("usage: %s <item number> ...", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 || n > len(flow.Items()) {
		return nil, fmt.Errorf("no item numbered %q", fields[1])
	}
	item := flow.Items()[n-1]
	return &item, nil
}

func saveItems(ctx context.Context, flow *scan.Flow, date time.Time) error {
	count := len(flow.Items())
	if err := flow.Save(ctx, date); err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Saved %d expense(s) for %s", count, date.Format(dateLayout))))
	return nil
}

func printItems(items []model.ScannedItem) {
	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Found %d item(s)", len(items))))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("#"),
		cli.TableHeaderStyle.Render("Description"),
		cli.TableHeaderStyle.Render("Amount"),
		cli.TableHeaderStyle.Render("Category"),
		cli.TableHeaderStyle.Render(""))

	for i, item := range items {
		flag := ""
		if item.NeedsReview() {
			flag = cli.WarningStyle.Render("⚠ check")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			i+1, item.Description, formatAmount(item.Amount), item.Category, flag)
	}
	w.Flush()
}
