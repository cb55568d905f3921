package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"simpleswap/internal/config"
	"simpleswap/internal/events"
	"simpleswap/internal/model"
	"simpleswap/internal/storage"
)

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	decoder, err := events.NewDecoder()
	if err != nil {
		return err
	}

	outWriter, err := storage.OpenJSONL(cfg.Out, false)
	if err != nil {
		return err
	}
	defer outWriter.Close()

	errWriter, err := storage.OpenJSONL(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
	)

	ctx := cmd.Context()
	var total, decoded, skipped, failed int
	err = storage.ScanJSONL(cfg.In, func(line int, raw []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		total++

		var record model.LogRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			failed++
			writeDecodeError(errWriter, model.DecodeError{Line: line, Error: err.Error()})
			return nil
		}
		if len(record.Topics) == 0 {
			failed++
			writeDecodeError(errWriter, decodeErrorFromRecord(line, record, fmt.Errorf("missing topic0")))
			return nil
		}

		if !decoder.CanDecode(record.Topic0()) {
			skipped++
			return nil
		}

		event, err := decoder.Decode(record)
		if err != nil {
			failed++
			writeDecodeError(errWriter, decodeErrorFromRecord(line, record, err))
			return nil
		}

		if err := outWriter.Write(event); err != nil {
			return err
		}
		decoded++
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("decode complete",
		zap.Int("total", total),
		zap.Int("decoded", decoded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	if err := errWriter.Close(); err != nil {
		return err
	}
	return outWriter.Close()
}

func decodeErrorFromRecord(line int, record model.LogRecord, err error) model.DecodeError {
	return model.DecodeError{
		Line:     line,
		Sequence: record.Sequence,
		Address:  record.Address,
		Topic0:   record.Topic0(),
		Error:    err.Error(),
	}
}

func writeDecodeError(writer *storage.JSONLWriter, errRecord model.DecodeError) {
	if writer == nil {
		return
	}
	_ = writer.Write(errRecord)
}
