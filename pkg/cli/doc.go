/*
Package cli provides helpers shared by the flowc commands.

Output Formatting:

Command results are printed as text, JSON or YAML:

	format, err := cli.ParseOutputFormat(outputFlag)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report)

Values implementing Texter control their own text rendering.

Exit Codes:

Commands return a *FailedError once diagnostics have been printed; ExitCode
maps it to exit status 1 and every other error to 2.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()
*/
package cli
