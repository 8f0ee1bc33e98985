package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/flowalert/internal/alert"
	"github.com/CosmoTheDev/flowalert/internal/config"
	"github.com/CosmoTheDev/flowalert/models"
)

var (
	alertFlowID  string
	alertExecID  int
	alertProject string
	alertOnly    string
	alertTimeout time.Duration
	alertReasons []string
	slaType      string
	slaJobID     string
	slaDuration  time.Duration
	slaMessage   string
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Send an alert for a flow execution event",
	Long: `Send an alert to every configured alerter.

By default a failing alerter is logged and the others still run. With
--only the named alerter runs alone and its error is returned.`,
}

var alertErrorCmd = &cobra.Command{
	Use:   "error",
	Short: "Alert that a flow execution failed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAlert(cmd, func(ctx context.Context, a alert.Alerter) error {
			return a.AlertOnError(ctx, flowFromFlags(models.FlowFailed), alertReasons...)
		}, func(ctx context.Context, d *alert.Dispatcher) {
			d.AlertOnError(ctx, flowFromFlags(models.FlowFailed), alertReasons...)
		})
	},
}

var alertSuccessCmd = &cobra.Command{
	Use:   "success",
	Short: "Alert that a flow execution succeeded",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAlert(cmd, func(ctx context.Context, a alert.Alerter) error {
			return a.AlertOnSuccess(ctx, flowFromFlags(models.FlowSucceeded))
		}, func(ctx context.Context, d *alert.Dispatcher) {
			d.AlertOnSuccess(ctx, flowFromFlags(models.FlowSucceeded))
		})
	},
}

var alertFirstErrorCmd = &cobra.Command{
	Use:   "first-error",
	Short: "Alert that a flow execution hit its first failure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAlert(cmd, func(ctx context.Context, a alert.Alerter) error {
			return a.AlertOnFirstError(ctx, flowFromFlags(models.FlowFailedFirst))
		}, func(ctx context.Context, d *alert.Dispatcher) {
			d.AlertOnFirstError(ctx, flowFromFlags(models.FlowFailedFirst))
		})
	},
}

var alertSlaCmd = &cobra.Command{
	Use:   "sla",
	Short: "Alert that a flow violated its SLA",
	RunE: func(cmd *cobra.Command, args []string) error {
		sla := models.SlaOption{
			Type:     models.SlaType(slaType),
			FlowID:   alertFlowID,
			JobID:    slaJobID,
			Duration: slaDuration,
			Actions:  []string{"alert"},
		}
		return runAlert(cmd, func(ctx context.Context, a alert.Alerter) error {
			return a.AlertOnSla(ctx, sla, slaMessage)
		}, func(ctx context.Context, d *alert.Dispatcher) {
			d.AlertOnSla(ctx, sla, slaMessage)
		})
	},
}

func init() {
	pf := alertCmd.PersistentFlags()
	pf.StringVar(&alertFlowID, "flow", "", "flow identifier")
	pf.StringVar(&alertProject, "project", "", "project the flow belongs to")
	pf.StringVar(&alertOnly, "only", "", "run a single alerter and return its error (jira, email, webhook)")
	pf.DurationVar(&alertTimeout, "timeout", 0, "abort the alert after this long (0 = no limit)")
	_ = alertCmd.MarkPersistentFlagRequired("flow")

	for _, c := range []*cobra.Command{alertErrorCmd, alertSuccessCmd, alertFirstErrorCmd} {
		c.Flags().IntVar(&alertExecID, "exec-id", 0, "execution id")
		_ = c.MarkFlagRequired("exec-id")
	}

	alertErrorCmd.Flags().StringArrayVar(&alertReasons, "reason", nil, "extra failure reason (repeatable)")

	alertSlaCmd.Flags().StringVar(&slaType, "type", string(models.SlaFlowFinish), "SLA type (FLOW_FINISH, FLOW_SUCCEED, JOB_FINISH, JOB_SUCCEED)")
	alertSlaCmd.Flags().StringVar(&slaJobID, "job", "", "job the SLA applies to")
	alertSlaCmd.Flags().DurationVar(&slaDuration, "duration", 0, "SLA limit")
	alertSlaCmd.Flags().StringVar(&slaMessage, "message", "", "violation message")

	alertCmd.AddCommand(alertErrorCmd, alertSuccessCmd, alertFirstErrorCmd, alertSlaCmd)
}

func flowFromFlags(status models.FlowStatus) *models.ExecutableFlow {
	return &models.ExecutableFlow{
		FlowID:      alertFlowID,
		ExecutionID: alertExecID,
		ProjectName: alertProject,
		Status:      status,
	}
}

func runAlert(cmd *cobra.Command, single func(context.Context, alert.Alerter) error, all func(context.Context, *alert.Dispatcher)) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	if alertOnly != "" {
		cfg.Alerters = []string{alertOnly}
	}
	d, err := alert.NewDispatcher(cfg)
	if err != nil {
		return err
	}
	if !d.IsAnyConfigured() {
		return errors.New("no alerters configured; set \"alerters\" in the config file")
	}

	ctx := cmd.Context()
	if alertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, alertTimeout)
		defer cancel()
	}

	if alertOnly != "" {
		a, _ := d.Get(d.Names()[0])
		return single(ctx, a)
	}
	all(ctx, d)
	return nil
}
