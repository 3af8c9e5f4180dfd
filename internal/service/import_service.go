package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"assetimport/internal/config"
	"assetimport/internal/csvexport"
	"assetimport/internal/domain"
	"assetimport/internal/port"
	"assetimport/internal/reconciler"
	"assetimport/internal/report"
	"assetimport/internal/schema"
	"assetimport/internal/sheet"
	"assetimport/internal/validator"
)

// ImportInput is the DTO for an uploaded spreadsheet.
type ImportInput struct {
	Kind        domain.ImportKind
	FileName    string
	ContentType string
	// Size is the declared size; zero when unknown.
	Size         int64
	File         io.Reader
	ValidateOnly bool
}

// Download is a generated file ready to be served.
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ArchiveOutput describes a results workbook copied to object storage.
type ArchiveOutput struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

// ImportService defines the bulk import contract.
type ImportService interface {
	Import(ctx context.Context, input ImportInput) (*domain.ImportResult, error)
	GetResult(ctx context.Context, id uuid.UUID) (*domain.ImportResult, error)
	DeleteResult(ctx context.Context, id uuid.UUID) error
	ExportResult(ctx context.Context, id uuid.UUID) (*Download, error)
	ExportRejected(ctx context.Context, id uuid.UUID) (*Download, error)
	ArchiveResult(ctx context.Context, id uuid.UUID) (*ArchiveOutput, error)
	Template(kind domain.ImportKind) (*Download, error)
}

type importService struct {
	submitter port.BulkSubmitter
	lookup    port.CategoryLookup
	store     port.ResultStore
	storage   port.ObjectStorage
	importCfg *config.ImportConfig
	s3Cfg     *config.S3Config
	log       *logrus.Entry
	now       func() time.Time
}

// NewImportService creates a new ImportService implementation. storage may be
// nil, in which case ArchiveResult returns domain.ErrArchiveDisabled.
func NewImportService(
	submitter port.BulkSubmitter,
	lookup port.CategoryLookup,
	store port.ResultStore,
	storage port.ObjectStorage,
	importCfg *config.ImportConfig,
	s3Cfg *config.S3Config,
	log *logrus.Entry,
) ImportService {
	return &importService{
		submitter: submitter,
		lookup:    lookup,
		store:     store,
		storage:   storage,
		importCfg: importCfg,
		s3Cfg:     s3Cfg,
		log:       log.WithField("component", "import_service"),
		now:       time.Now,
	}
}

func (s *importService) Import(ctx context.Context, input ImportInput) (*domain.ImportResult, error) {
	sch, err := schema.ForKind(input.Kind)
	if err != nil {
		return nil, err
	}

	data, err := s.readUpload(input)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"kind":          input.Kind,
		"file":          input.FileName,
		"bytes":         len(data),
		"validate_only": input.ValidateOnly,
	})
	log.Info("import started")

	rows, err := sheet.Parse(data, sch)
	if err != nil {
		log.WithError(err).Warn("spreadsheet rejected")
		return nil, err
	}

	part := validator.NewEngine(sch, s.lookup, log).Validate(ctx, rows)

	var outcome reconciler.Outcome
	if input.ValidateOnly {
		outcome.Accepted = make([]domain.AcceptedRecord, 0, len(part.Valid))
		for _, rec := range part.Valid {
			outcome.Accepted = append(outcome.Accepted, domain.AcceptedRecord{
				RowNumber: rec.RowNumber,
				Data:      rec.Values,
			})
		}
	} else {
		rec := reconciler.New(s.submitter, sch, reconciler.Options{
			EmptyMainCategoryWorkaround: s.importCfg.EmptyMainCategoryWorkaround,
		}, log)
		outcome = rec.Reconcile(ctx, part.Valid)
	}

	rejected := make([]domain.RejectionEntry, 0, len(part.Rejected)+len(outcome.Rejected))
	rejected = append(rejected, part.Rejected...)
	rejected = append(rejected, outcome.Rejected...)

	result := report.Summarize(outcome.Accepted, rejected)
	result.ID = uuid.New()
	result.Kind = input.Kind
	result.FileName = input.FileName
	result.ValidateOnly = input.ValidateOnly
	result.CreatedAt = s.now().UTC()

	if err := s.store.Save(ctx, result); err != nil {
		log.WithError(err).Error("failed to save import result")
		return nil, fmt.Errorf("saving import result: %w", err)
	}

	log.WithFields(logrus.Fields{
		"import_id":    result.ID,
		"total":        result.Summary.Total,
		"added":        result.Summary.Added,
		"rejected":     result.Summary.Rejected,
		"success_rate": result.Summary.SuccessRate,
	}).Info("import finished")

	return result, nil
}

// readUpload checks extension, declared type, size, and sniffed type, then
// returns the file contents.
func (s *importService) readUpload(input ImportInput) ([]byte, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	if declared, ok := declaredFileType(input.ContentType); ok && declared != fileType {
		return nil, domain.ErrUnsupportedFileType
	} else if !ok && !isGenericContentType(input.ContentType) {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.importCfg.MaxFileSize()
	if input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	if detected, ok := detectFileType(data); !ok || detected != fileType {
		return nil, domain.ErrUnsupportedFileType
	}
	return data, nil
}

// detectFileType sniffs the payload; a zip or OLE container that is not a
// workbook is not recognized.
func detectFileType(data []byte) (domain.FileType, bool) {
	mtype := mimetype.Detect(data)
	for contentType, ft := range domain.AllowedContentTypes {
		if mtype.Is(contentType) {
			return ft, true
		}
	}
	return "", false
}

func declaredFileType(contentType string) (domain.FileType, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	ft, ok := domain.AllowedContentTypes[mediaType]
	return ft, ok
}

// isGenericContentType reports whether the client sent no useful type, in
// which case the extension decides.
func isGenericContentType(contentType string) bool {
	ct := strings.TrimSpace(contentType)
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/octet-stream"
}

func (s *importService) GetResult(ctx context.Context, id uuid.UUID) (*domain.ImportResult, error) {
	return s.store.Get(ctx, id)
}

func (s *importService) DeleteResult(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("import_id", id).Info("import result deleted")
	return nil
}

func (s *importService) ExportResult(ctx context.Context, id uuid.UUID) (*Download, error) {
	result, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.exportWorkbook(result)
}

func (s *importService) exportWorkbook(result *domain.ImportResult) (*Download, error) {
	sch, err := schema.ForKind(result.Kind)
	if err != nil {
		return nil, err
	}
	data, err := report.Export(result, sch)
	if err != nil {
		return nil, fmt.Errorf("exporting results: %w", err)
	}
	return &Download{
		FileName:    report.Filename(result.Kind, s.now()),
		ContentType: report.ContentTypeXLSX,
		Data:        data,
	}, nil
}

func (s *importService) ExportRejected(ctx context.Context, id uuid.UUID) (*Download, error) {
	result, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sch, err := schema.ForKind(result.Kind)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf, sch)
	if err := w.WriteHeader(); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	if err := w.WriteRejections(result.Rejected); err != nil {
		return nil, fmt.Errorf("writing csv rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return &Download{
		FileName:    csvexport.BuildFilename(result.Kind, s.now()),
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

func (s *importService) ArchiveResult(ctx context.Context, id uuid.UUID) (*ArchiveOutput, error) {
	if s.storage == nil || s.s3Cfg == nil || !s.s3Cfg.Enabled() {
		return nil, domain.ErrArchiveDisabled
	}

	result, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dl, err := s.exportWorkbook(result)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("imports/%s/%s/%s", result.Kind, result.ID, dl.FileName)
	log := s.log.WithFields(logrus.Fields{"import_id": result.ID, "bucket": s.s3Cfg.Bucket, "key": key})

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(dl.Data),
		ContentType: dl.ContentType,
		Size:        int64(len(dl.Data)),
		FileName:    dl.FileName,
		Metadata: map[string]string{
			"import-id": result.ID.String(),
			"kind":      string(result.Kind),
		},
	})
	if err != nil {
		log.WithError(err).Error("archive upload failed")
		return nil, errors.Join(domain.ErrUploadFailed, err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, key, s.s3Cfg.PresignExpiry)
	if err != nil {
		if delErr := s.storage.Delete(ctx, s.s3Cfg.Bucket, key); delErr != nil {
			log.WithError(delErr).Warn("failed to remove archived object")
		}
		return nil, fmt.Errorf("generating presigned url: %w", err)
	}

	log.Info("import result archived")
	return &ArchiveOutput{Bucket: s.s3Cfg.Bucket, Key: key, URL: url}, nil
}

func (s *importService) Template(kind domain.ImportKind) (*Download, error) {
	sch, err := schema.ForKind(kind)
	if err != nil {
		return nil, err
	}
	data, err := report.Template(sch)
	if err != nil {
		return nil, fmt.Errorf("building template: %w", err)
	}
	return &Download{
		FileName:    report.TemplateFilename(kind),
		ContentType: report.ContentTypeXLSX,
		Data:        data,
	}, nil
}
