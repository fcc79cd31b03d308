package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"resume-parser-go/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// MinIOStaging 将上传文件暂存到MinIO，解析完成后删除对象
// 生命周期规则作为兜底，清理进程异常退出时遗留的对象
type MinIOStaging struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	bucket string
	logger *log.Logger
}

var _ Staging = (*MinIOStaging)(nil)

// NewMinIOStaging 创建MinIO暂存区
func NewMinIOStaging(cfg *config.MinIOConfig, logger *log.Logger) (*MinIOStaging, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("MinIO endpoint不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	bucket := cfg.StagingBucket
	if bucket == "" {
		bucket = "resume-staging"
	}
	logger.Printf("[MinIO] Initializing MinIO client with endpoint: %s, stagingBucket: %s", cfg.Endpoint, bucket)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIOStaging{
		client: client,
		cfg:    cfg,
		bucket: bucket,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.ensureBucketExists(ctx, bucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保暂存存储桶 %s 存在失败: %w", bucket, err)
	}

	if cfg.StagingExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, bucket, "expire-staged-uploads", cfg.StagingExpireDays); err != nil {
			logger.Printf("[MinIO] Warning: Failed to set up lifecycle rules: %v", err)
		}
	}

	logger.Printf("[MinIO] Client initialized successfully for endpoint: %s", cfg.Endpoint)
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIOStaging) ensureBucketExists(ctx context.Context, bucketName, location string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if exists {
		m.logger.Printf("[MinIO] Bucket %s already exists.", bucketName)
		return nil
	}

	m.logger.Printf("[MinIO] Bucket %s does not exist, attempting to create...", bucketName)
	if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
	}
	m.logger.Printf("[MinIO] Bucket %s created successfully.", bucketName)
	return nil
}

// setupBucketLifecycle 为指定存储桶设置过期规则
func (m *MinIOStaging) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	m.logger.Printf("[MinIO] Setting lifecycle rule for bucket %s: ID=%s, ExpiryDays=%d", bucketName, ruleID, expiryDays)
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucketName, lc)
}

// objectNameFor 生成暂存对象名，例如 uploads/2024/05/01/{uuid}-resume.pdf
func objectNameFor(safeName string, now time.Time) string {
	return path.Join("uploads", now.Format("2006/01/02"), uuid.NewString()+"-"+safeName)
}

// Stage 上传文件到暂存桶
func (m *MinIOStaging) Stage(ctx context.Context, fileName string, reader io.Reader, size int64) (*StagedFile, error) {
	safe := SecureFilename(fileName)
	if safe == "" {
		safe = "upload.pdf"
	}
	objectName := objectNameFor(safe, time.Now())

	info, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return nil, fmt.Errorf("上传对象 %s/%s 失败: %w", m.bucket, objectName, err)
	}
	m.logger.Printf("[MinIO] Staged %s, ETag: %s, Size: %d", objectName, info.ETag, info.Size)

	return &StagedFile{
		OriginalName: fileName,
		SafeName:     safe,
		ObjectName:   objectName,
		Size:         info.Size,
	}, nil
}

// Open 读取暂存对象，调用方负责关闭
func (m *MinIOStaging) Open(ctx context.Context, file *StagedFile) (io.ReadCloser, error) {
	if file == nil || file.ObjectName == "" {
		return nil, fmt.Errorf("暂存对象名不能为空")
	}
	obj, err := m.client.GetObject(ctx, m.bucket, file.ObjectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 失败: %w", m.bucket, file.ObjectName, err)
	}
	return obj, nil
}

// Remove 删除暂存对象
func (m *MinIOStaging) Remove(ctx context.Context, file *StagedFile) error {
	if file == nil || file.ObjectName == "" {
		return nil
	}
	if err := m.client.RemoveObject(ctx, m.bucket, file.ObjectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除对象 %s/%s 失败: %w", m.bucket, file.ObjectName, err)
	}
	return nil
}
