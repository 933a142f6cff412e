package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mfagundes/taskfan/pkg/domain"
)

type client struct {
	baseURL    string
	httpClient *http.Client
}

type ui struct {
	title func(a ...any) string
	ok    func(a ...any) string
	warn  func(a ...any) string
	err   func(a ...any) string
	dim   func(a ...any) string
}

func newUI() *ui {
	return &ui{
		title: color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

func (c *client) request(method, path string, body any) (int, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func statusColor(u *ui, status domain.SessionStatus) string {
	switch status {
	case domain.StatusCompleted:
		return u.ok(string(status))
	case domain.StatusPartial:
		return u.warn(string(status))
	default:
		return u.err(string(status))
	}
}

func main() {
	api := &client{
		baseURL:    getenv("TASKFAN_BASE_URL", "http://localhost:8080"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	u := newUI()

	root := &cobra.Command{
		Use:   "taskfan",
		Short: "Fan a task out across registered workers and wait for the answer",
	}

	var name string
	var count int
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit a task and print the aggregated result",
		RunE: func(cmd *cobra.Command, args []string) error {
			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = fmt.Sprintf(" dispatching %q x%d ...", name, count)
			sp.Start()
			status, body, err := api.request(http.MethodPost, "/api/tasks", map[string]any{"name": name, "count": count})
			sp.Stop()
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				var e struct {
					Error string `json:"error"`
				}
				_ = json.Unmarshal(body, &e)
				return fmt.Errorf("%s", u.err(e.Error))
			}

			var session domain.TaskSession
			if err := json.Unmarshal(body, &session); err != nil {
				return err
			}

			fmt.Println(u.title("task"), session.ID, u.dim(fmt.Sprintf("(%d workers)", session.AvailableWorkers)))
			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WORKER\tASSIGNED\tCOMPLETED\tELAPSED\tERROR")
			for _, r := range session.Results {
				errCol := ""
				if r.Error != "" {
					errCol = u.err(r.Error)
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%dms\t%s\n", r.Label, r.AssignedCount, r.CompletedCount, r.ElapsedMillis, errCol)
			}
			w.Flush()
			fmt.Printf("%s %s  completed %d/%d in %dms\n",
				u.title("status"), statusColor(u, session.OverallStatus),
				session.TotalCompleted, session.RequestedTotal, session.TotalElapsedMillis)
			return nil
		},
	}
	submit.Flags().StringVar(&name, "name", "", "task name (file base name on workers)")
	submit.Flags().IntVar(&count, "count", 0, "total unit count to split across workers")
	_ = submit.MarkFlagRequired("name")
	_ = submit.MarkFlagRequired("count")

	workers := &cobra.Command{Use: "workers", Short: "Inspect and mutate the worker registry"}

	workersList := &cobra.Command{
		Use:   "list",
		Short: "List registered workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := api.request(http.MethodGet, "/api/workers", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("server answered %d: %s", status, body)
			}
			var out struct {
				Count   int                   `json:"count"`
				Workers []domain.WorkerRecord `json:"workers"`
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return err
			}
			if out.Count == 0 {
				fmt.Println(u.dim("no workers registered"))
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tURL\tSOURCE\tLAST SEEN")
			for _, rec := range out.Workers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.Label, rec.URL, rec.Source, rec.LastSeenAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	var regURL, regLabel string
	workersRegister := &cobra.Command{
		Use:   "register",
		Short: "Register (or update) a worker by label",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := api.request(http.MethodPost, "/api/workers/register", map[string]string{"url": regURL, "label": regLabel})
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				var e struct {
					Error string `json:"error"`
				}
				_ = json.Unmarshal(body, &e)
				return fmt.Errorf("%s", u.err(e.Error))
			}
			fmt.Println(u.ok("registered"), regLabel, u.dim(regURL))
			return nil
		},
	}
	workersRegister.Flags().StringVar(&regURL, "url", "", "worker base URL")
	workersRegister.Flags().StringVar(&regLabel, "label", "worker", "worker label (identity key)")
	_ = workersRegister.MarkFlagRequired("url")

	workers.AddCommand(workersList, workersRegister)
	root.AddCommand(submit, workers)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
