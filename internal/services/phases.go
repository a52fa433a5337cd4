package services

import (
	"context"
	"time"

	"github.com/vvka-141/metdbload/internal/batch"
	"github.com/vvka-141/metdbload/internal/keys"
	"github.com/vvka-141/metdbload/internal/metadata"
	"github.com/vvka-141/metdbload/internal/resolve"
	"github.com/vvka-141/metdbload/internal/schema"
	"github.com/vvka-141/metdbload/internal/writer"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// loadJob carries the state of one Load call through its phases.
type loadJob struct {
	svc    *LoadService
	config metdbload.LoadConfig
	host   string
	user   string
	writer *writer.Writer
}

// run executes every phase against q. It never commits.
func (j *loadJob) run(ctx context.Context, q metdbload.Querier, b batch.Batch) (*metdbload.LoadResult, error) {
	s := j.svc
	result := &metdbload.LoadResult{
		LinesWritten: make(map[string]int),
		InstanceID:   metdbload.NoKey,
	}
	writeStarted := s.now()

	// data_file
	fr, err := s.resolver.Files(ctx, q, b.Files, b.Lines, j.config.Flags.ForceDupFile)
	if err != nil {
		return nil, s.phaseError(metdbload.PhaseFiles, err)
	}
	result.FilesReused = fr.Reused
	result.FilesDropped = fr.Dropped

	fileStart, err := keys.NextID(ctx, q, schema.DataFileTable, schema.DataFileID, metdbload.DataFileFloor)
	if err != nil {
		return nil, s.phaseError(metdbload.PhaseFiles, err)
	}
	files := keys.AssignFileKeys(fr.Files, fileStart)
	lines, err := keys.PropagateFileKeys(files, fr.Lines)
	if err != nil {
		return nil, s.phaseError(metdbload.PhaseFiles, err)
	}

	if result.FilesNew, err = j.writer.WriteFiles(ctx, q, files, fileStart); err != nil {
		return nil, s.phaseError(metdbload.PhaseWriteFiles, err)
	}

	// stat_header
	headerStart, err := keys.NextID(ctx, q, schema.StatHeaderTable, schema.StatHeaderID, metdbload.StatHeaderFloor)
	if err != nil {
		return nil, s.phaseError(metdbload.PhaseHeaders, err)
	}
	headers, err := s.resolver.Headers(ctx, q, resolve.DistinctHeaders(lines), j.config.Flags.StatHeaderDBCheck)
	if err != nil {
		return nil, s.phaseError(metdbload.PhaseHeaders, err)
	}
	headers = keys.AssignHeaderKeys(headers, headerStart)
	if lines, err = keys.PropagateHeaderKeys(headers, lines); err != nil {
		return nil, s.phaseError(metdbload.PhaseHeaders, err)
	}

	if result.HeadersNew, err = j.writer.WriteHeaders(ctx, q, headers, headerStart); err != nil {
		return nil, s.phaseError(metdbload.PhaseWriteHeader, err)
	}
	result.HeadersExisting = len(headers) - result.HeadersNew

	// line_data_*
	if lines, err = j.assignLineDataIDs(ctx, q, lines); err != nil {
		return nil, s.phaseError(metdbload.PhaseLineData, err)
	}
	written, err := j.writer.WriteLines(ctx, q, lines)
	if err != nil {
		return nil, s.phaseError(metdbload.PhaseLineData, err)
	}
	result.LinesWritten = written
	s.logger.Info(">>> Write time: %v", s.now().Sub(writeStarted).Round(time.Millisecond))

	// metadata and instance_info
	if result.Metadata, err = s.metadata.Upsert(ctx, q, j.config.Group, j.config.Description); err != nil {
		return nil, s.phaseError(metdbload.PhaseMetadata, err)
	}
	if j.config.Flags.LoadXML && len(files) > 0 {
		rec, err := j.instanceInfo(files)
		if err != nil {
			return nil, s.phaseError(metdbload.PhaseMetadata, err)
		}
		if result.InstanceID, err = s.metadata.WriteInstanceInfo(ctx, q, rec); err != nil {
			return nil, s.phaseError(metdbload.PhaseMetadata, err)
		}
	}

	s.logger.Info("Loaded %d new files (%d reused, %d skipped), %d new headers, %d lines",
		result.FilesNew, result.FilesReused, len(result.FilesDropped), result.HeadersNew, result.TotalLines())
	return result, nil
}

// assignLineDataIDs numbers the lines of every variable line type present in lines.
func (j *loadJob) assignLineDataIDs(ctx context.Context, q metdbload.Querier, lines []batch.LineRecord) ([]batch.LineRecord, error) {
	present := make(map[string]bool)
	for _, l := range lines {
		present[l.LineType] = true
	}

	for _, lt := range j.svc.schema.LineTypes() {
		if !lt.Variable || !present[lt.Name] {
			continue
		}
		start, err := keys.NextID(ctx, q, lt.Table, schema.LineDataID, metdbload.LineDataFloor)
		if err != nil {
			return nil, err
		}
		lines = keys.AssignLineDataIDs(lines, lt.Name, start)
	}
	return lines, nil
}

// instanceInfo builds the audit row from the first file and the job settings.
func (j *loadJob) instanceInfo(files []batch.FileRecord) (metadata.InstanceInfoRecord, error) {
	payload := j.config.LoadSpecXML
	if payload == "" {
		var err error
		if payload, err = metadata.SettingsXML(j.config, j.host, j.user); err != nil {
			return metadata.InstanceInfoRecord{}, err
		}
	}
	return metadata.InstanceInfoRecord{
		Updater:    metadata.CurrentUpdater(),
		UpdateDate: files[0].LoadDate,
		LoadNote:   j.config.LoadNote,
		XML:        payload,
	}, nil
}
