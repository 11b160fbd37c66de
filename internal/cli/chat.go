package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/patient-scheduler/internal/appointments"
	"github.com/wolfman30/patient-scheduler/internal/scheduling"
	"github.com/wolfman30/patient-scheduler/internal/temporal"
	"github.com/wolfman30/patient-scheduler/pkg/logging"
)

var (
	chatBackend string
	chatAPIKey  string
	chatLang    string
	chatName    string
	chatEmail   string
	chatVerbose bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run the scheduling interview in the terminal",
	Long: `Run the five-question scheduling interview line by line. Without --backend
every request is confirmed locally in dry-run mode.

Type /start to begin another interview and /quit to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.Discard()
		if chatVerbose {
			logger = logging.NewWithWriter("debug", cmd.ErrOrStderr())
		}

		var booker appointments.Booker = appointments.DryRunBooker{}
		if strings.TrimSpace(chatBackend) != "" {
			client, err := appointments.NewClient(appointments.ClientConfig{BaseURL: chatBackend, APIKey: chatAPIKey})
			if err != nil {
				return err
			}
			booker = client
		}
		submitter := appointments.NewService(booker, appointments.NewInMemoryRepository(), nil, nil, logger)
		return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), submitter, logger)
	},
}

func runChat(ctx context.Context, in io.Reader, out io.Writer, submitter scheduling.Submitter, logger *logging.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	controller, err := scheduling.NewController(scheduling.Config{
		SessionID: "terminal",
		Locale:    chatLang,
		Identity:  scheduling.Identity{Name: chatName, Email: chatEmail},
		Emit:      func(msg scheduling.Message) { printMessage(out, msg) },
		Resolver:  temporal.NewResolver(nil, nil),
		Submitter: submitter,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer controller.Close()

	ctx = appointments.ContextWithSessionID(ctx, "terminal")
	ctx = appointments.ContextWithLocale(ctx, controller.Locale())
	controller.Start()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit":
			return nil
		case "/start":
			controller.Start()
			continue
		}
		if !controller.HandleUserInput(ctx, line) {
			fmt.Fprintln(out, "(no interview running; type /start to book or /quit to leave)")
		}
	}
}

func printMessage(out io.Writer, msg scheduling.Message) {
	fmt.Fprintf(out, "agent> %s\n", msg.Text)
	for _, a := range msg.Actions {
		fmt.Fprintf(out, "       [%s] %s\n", a.Label, a.URL)
	}
}

func init() {
	chatCmd.Flags().StringVar(&chatBackend, "backend", "", "scheduling backend base URL (dry run when empty)")
	chatCmd.Flags().StringVar(&chatAPIKey, "api-key", "", "bearer key for the scheduling backend")
	chatCmd.Flags().StringVar(&chatLang, "lang", "en", "interview language (en or fr)")
	chatCmd.Flags().StringVar(&chatName, "name", "", "prefill the patient name")
	chatCmd.Flags().StringVar(&chatEmail, "email", "", "prefill the patient email")
	chatCmd.Flags().BoolVarP(&chatVerbose, "verbose", "v", false, "log controller events to stderr")
	rootCmd.AddCommand(chatCmd)
}
