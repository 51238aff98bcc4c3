package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"bookkeeper/internal/apperr"
	"bookkeeper/internal/category"
	"bookkeeper/internal/ledger"
	"bookkeeper/internal/logging"
	"bookkeeper/internal/models"
	"bookkeeper/internal/report"
)

func periodFlags(withMonth bool) []cli.Flag {
	now := time.Now()
	flags := []cli.Flag{
		&cli.IntFlag{Name: "year", Aliases: []string{"y"}, Usage: "year", Value: now.Year()},
	}
	if withMonth {
		flags = append(flags, &cli.IntFlag{Name: "month", Aliases: []string{"m"}, Usage: "month (1-12)", Value: int(now.Month())})
	}
	return flags
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, apperr.Invalid("amount", "%q is not a number", s)
	}
	return amount, nil
}

func parseID(c *cli.Context) (int64, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, apperr.Invalid("id", "transaction id is required")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("id", "%q is not a valid transaction id", arg)
	}
	return id, nil
}

func registerCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create a user from --user and --password",
		Action: logging.Wrap("Register", e.log, func(c *cli.Context, data *logging.LogData) error {
			username, password, err := e.credentials(c)
			if err != nil {
				return err
			}
			if err := e.open(c); err != nil {
				return err
			}

			user, err := e.auth.Register(c.Context, username, password)
			if err != nil {
				return err
			}
			data.AddData("user_id", user.ID)

			fmt.Fprintf(e.stdout, "User %s created successfully with ID %d\n", user.Username, user.ID)
			return nil
		}),
	}
}

func categoriesCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "list the categories for each transaction type",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "income or expense (default both)"},
		},
		Action: logging.Wrap("Categories", e.log, func(c *cli.Context, data *logging.LogData) error {
			kinds := models.Kinds
			if s := c.String("type"); s != "" {
				kind, ok := models.ParseKind(s)
				if !ok {
					return apperr.Invalid("type", "%q must be one of income, expense", s)
				}
				kinds = []models.Kind{kind}
			}

			for _, kind := range kinds {
				fmt.Fprintf(e.stdout, "%s: %s\n", kind, strings.Join(category.For(kind), ", "))
			}
			return nil
		}),
	}
}

func txCommand(e *env) *cli.Command {
	entryFlags := []cli.Flag{
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "category"},
		&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Usage: "positive amount"},
		&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "date as YYYY-MM-DD"},
		&cli.StringFlag{Name: "description", Usage: "free-text description"},
	}

	return &cli.Command{
		Name:  "tx",
		Usage: "record and manage transactions",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "record an income or expense",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "income or expense", Required: true},
				}, entryFlags...),
				Action: logging.Wrap("Tx.Add", e.log, func(c *cli.Context, data *logging.LogData) error {
					sess, err := e.session(c)
					if err != nil {
						return err
					}
					amount, err := parseAmount(c.String("amount"))
					if err != nil {
						return err
					}
					date := c.String("date")
					if date == "" {
						date = time.Now().Format(models.DateLayout)
					}

					t, err := e.ledger.Add(c.Context, sess, ledger.Entry{
						Kind:        c.String("type"),
						Category:    c.String("category"),
						Amount:      amount,
						Date:        date,
						Description: c.String("description"),
					})
					if err != nil {
						return err
					}
					data.AddData("id", t.ID)

					fmt.Fprintf(e.stdout, "Transaction %d added: %s %s %s on %s\n",
						t.ID, t.Kind, t.Category, report.Money(t.Amount), t.Date)
					return nil
				}),
			},
			{
				Name:      "update",
				Usage:     "change the category, amount, date or description of a transaction",
				ArgsUsage: "<id>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "must match the recorded type"},
				}, entryFlags...),
				Action: logging.Wrap("Tx.Update", e.log, func(c *cli.Context, data *logging.LogData) error {
					id, err := parseID(c)
					if err != nil {
						return err
					}
					sess, err := e.session(c)
					if err != nil {
						return err
					}
					data.AddData("id", id)

					current, err := e.ledger.Get(c.Context, sess, id)
					if err != nil {
						return err
					}

					entry := ledger.Entry{
						Kind:        string(current.Kind),
						Category:    current.Category,
						Amount:      current.Amount,
						Date:        current.Date.String(),
						Description: current.Description,
					}
					if c.IsSet("type") {
						entry.Kind = c.String("type")
					}
					if c.IsSet("category") {
						entry.Category = c.String("category")
					}
					if c.IsSet("amount") {
						if entry.Amount, err = parseAmount(c.String("amount")); err != nil {
							return err
						}
					}
					if c.IsSet("date") {
						entry.Date = c.String("date")
					}
					if c.IsSet("description") {
						entry.Description = c.String("description")
					}

					t, err := e.ledger.Update(c.Context, sess, id, entry)
					if err != nil {
						return err
					}

					fmt.Fprintf(e.stdout, "Transaction %d updated: %s %s %s on %s\n",
						t.ID, t.Kind, t.Category, report.Money(t.Amount), t.Date)
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "delete a transaction",
				ArgsUsage: "<id>",
				Action: logging.Wrap("Tx.Delete", e.log, func(c *cli.Context, data *logging.LogData) error {
					id, err := parseID(c)
					if err != nil {
						return err
					}
					sess, err := e.session(c)
					if err != nil {
						return err
					}
					data.AddData("id", id)

					if err := e.ledger.Delete(c.Context, sess, id); err != nil {
						return err
					}
					fmt.Fprintf(e.stdout, "Transaction %d deleted.\n", id)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "list transactions, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "income or expense"},
					&cli.StringFlag{Name: "from", Usage: "first date, YYYY-MM-DD"},
					&cli.StringFlag{Name: "to", Usage: "last date, YYYY-MM-DD"},
				},
				Action: logging.Wrap("Tx.List", e.log, func(c *cli.Context, data *logging.LogData) error {
					sess, err := e.session(c)
					if err != nil {
						return err
					}

					transactions, err := e.ledger.List(c.Context, sess, ledger.Filter{
						Kind:      c.String("type"),
						StartDate: c.String("from"),
						EndDate:   c.String("to"),
					})
					if err != nil {
						return err
					}
					data.AddData("count", len(transactions))

					if len(transactions) == 0 {
						fmt.Fprintln(e.stdout, "No transactions found.")
						return nil
					}
					return report.WriteTransactions(e.stdout, transactions)
				}),
			},
		},
	}
}

func budgetCommand(e *env) *cli.Command {
	categoryFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "expense category", Required: true}
	}

	return &cli.Command{
		Name:  "budget",
		Usage: "set and check monthly spending limits",
		Subcommands: []*cli.Command{
			{
				Name:  "set",
				Usage: "set the budget for a category and month",
				Flags: append([]cli.Flag{
					categoryFlag(),
					&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Usage: "limit, zero or more", Required: true},
				}, periodFlags(true)...),
				Action: logging.Wrap("Budget.Set", e.log, func(c *cli.Context, data *logging.LogData) error {
					sess, err := e.session(c)
					if err != nil {
						return err
					}
					amount, err := parseAmount(c.String("amount"))
					if err != nil {
						return err
					}
					month, year := c.Int("month"), c.Int("year")
					data.AddData("category", c.String("category"))

					if err := e.tracker.Set(c.Context, sess, c.String("category"), amount, month, year); err != nil {
						return err
					}
					fmt.Fprintf(e.stdout, "Budget for %s in %s %d set to %s\n",
						c.String("category"), time.Month(month), year, report.Money(amount))
					return nil
				}),
			},
			{
				Name:  "get",
				Usage: "show the budget for a category and month",
				Flags: append([]cli.Flag{categoryFlag()}, periodFlags(true)...),
				Action: logging.Wrap("Budget.Get", e.log, func(c *cli.Context, data *logging.LogData) error {
					sess, err := e.session(c)
					if err != nil {
						return err
					}
					month, year := c.Int("month"), c.Int("year")

					amount, err := e.tracker.Get(c.Context, sess, c.String("category"), month, year)
					if err != nil {
						return err
					}
					spent, err := e.tracker.SpentInMonth(c.Context, sess, c.String("category"), month, year)
					if err != nil {
						return err
					}

					fmt.Fprintf(e.stdout, "%s %s %d: budget %s, spent %s\n",
						c.String("category"), time.Month(month), year, report.Money(amount), report.Money(spent))
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "compare spending with every budget of a month",
				Flags: periodFlags(true),
				Action: logging.Wrap("Budget.Status", e.log, func(c *cli.Context, data *logging.LogData) error {
					sess, err := e.session(c)
					if err != nil {
						return err
					}

					statuses, err := e.tracker.Status(c.Context, sess, c.Int("month"), c.Int("year"))
					if err != nil {
						return err
					}
					return report.WriteBudgetStatus(e.stdout, statuses)
				}),
			},
			{
				Name:  "exceeded",
				Usage: "list the categories over budget in a month",
				Flags: periodFlags(true),
				Action: logging.Wrap("Budget.Exceeded", e.log, func(c *cli.Context, data *logging.LogData) error {
					sess, err := e.session(c)
					if err != nil {
						return err
					}

					overages, err := e.tracker.Exceeded(c.Context, sess, c.Int("month"), c.Int("year"))
					if err != nil {
						return err
					}
					data.AddData("count", len(overages))
					return report.WriteOverages(e.stdout, overages)
				}),
			},
		},
	}
}

func reportCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "summarize a month or a year",
		Subcommands: []*cli.Command{
			{
				Name:  "monthly",
				Usage: "transactions, totals, category subtotals and overages for a month",
				Flags: periodFlags(true),
				Action: logging.Wrap("Report.Monthly", e.log, func(c *cli.Context, data *logging.LogData) error {
					sess, err := e.session(c)
					if err != nil {
						return err
					}

					r, err := e.reports.Monthly(c.Context, sess, c.Int("month"), c.Int("year"))
					if err != nil {
						return err
					}
					return report.WriteMonthly(e.stdout, r)
				}),
			},
			{
				Name:  "yearly",
				Usage: "month-by-month totals for a year",
				Flags: periodFlags(false),
				Action: logging.Wrap("Report.Yearly", e.log, func(c *cli.Context, data *logging.LogData) error {
					sess, err := e.session(c)
					if err != nil {
						return err
					}

					r, err := e.reports.Yearly(c.Context, sess, c.Int("year"))
					if err != nil {
						return err
					}
					return report.WriteYearly(e.stdout, r)
				}),
			},
		},
	}
}

func backupCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "copy the database file and restore from copies",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "write a timestamped copy of the database",
				Action: logging.Wrap("Backup.Create", e.log, func(c *cli.Context, data *logging.LogData) error {
					if _, err := e.session(c); err != nil {
						return err
					}
					m, err := e.backupManager(c)
					if err != nil {
						return err
					}

					info, err := m.Backup(c.Context)
					if err != nil {
						return err
					}
					data.AddData("backup", info.Name)

					fmt.Fprintf(e.stdout, "Backup created: %s (%s)\n", info.Path, humanize.Bytes(uint64(info.Size)))
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "list backups, oldest first",
				Action: logging.Wrap("Backup.List", e.log, func(c *cli.Context, data *logging.LogData) error {
					if _, err := e.session(c); err != nil {
						return err
					}
					m, err := e.backupManager(c)
					if err != nil {
						return err
					}

					backups, err := m.List()
					if err != nil {
						return err
					}
					if len(backups) == 0 {
						fmt.Fprintln(e.stdout, "No backups found.")
						return nil
					}
					for i, b := range backups {
						fmt.Fprintf(e.stdout, "%d. %s  %s  %s\n", i+1, b.Name, humanize.Bytes(uint64(b.Size)), humanize.Time(b.ModTime))
					}
					return nil
				}),
			},
			{
				Name:      "restore",
				Usage:     "replace the database with a backup",
				ArgsUsage: "<backup name>",
				Action: logging.Wrap("Backup.Restore", e.log, func(c *cli.Context, data *logging.LogData) error {
					name := c.Args().First()
					if name == "" {
						return apperr.Invalid("backup", "backup name is required")
					}
					if _, err := e.session(c); err != nil {
						return err
					}
					m, err := e.backupManager(c)
					if err != nil {
						return err
					}
					data.AddData("backup", name)

					if err := m.Restore(c.Context, name); err != nil {
						return err
					}
					fmt.Fprintf(e.stdout, "Database restored from %s\n", name)
					return nil
				}),
			},
		},
	}
}
