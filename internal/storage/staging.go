package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// StagedFile 暂存的上传文件
type StagedFile struct {
	OriginalName string // 客户端提供的原始文件名
	SafeName     string // 经过清理的文件名
	LocalPath    string // 本地暂存路径，对象存储暂存时为空
	ObjectName   string // 对象存储中的对象名，本地暂存时为空
	Size         int64
}

// Staging 上传文件的暂存区，解析完成后必须调用 Remove
type Staging interface {
	Stage(ctx context.Context, fileName string, reader io.Reader, size int64) (*StagedFile, error)
	Open(ctx context.Context, file *StagedFile) (io.ReadCloser, error)
	Remove(ctx context.Context, file *StagedFile) error
}

var (
	unsafeFileChars    = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	repeatedUnderscore = regexp.MustCompile(`_+`)
)

// SecureFilename 返回只包含ASCII字母数字和 "._-" 的安全文件名，结果可能为空
func SecureFilename(name string) string {
	// 兼容Windows客户端上传的完整路径
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base("/" + name)

	// 去掉重音符号等组合字符
	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}

	name = strings.Join(strings.Fields(b.String()), "_")
	name = unsafeFileChars.ReplaceAllString(name, "")
	name = repeatedUnderscore.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	return name
}

// HasAllowedExtension 判断文件名的扩展名是否在允许列表中（不区分大小写）
func HasAllowedExtension(fileName string, allowed []string) bool {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return false
	}
	ext := strings.ToLower(fileName[idx+1:])
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == ext {
			return true
		}
	}
	return false
}

// LocalStaging 将上传文件暂存到本地目录
type LocalStaging struct {
	dir string
}

var _ Staging = (*LocalStaging)(nil)

// NewLocalStaging 创建本地暂存区，dir为空时使用系统临时目录
func NewLocalStaging(dir string) (*LocalStaging, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "resume-uploads")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("创建暂存目录 %s 失败: %w", dir, err)
	}
	return &LocalStaging{dir: dir}, nil
}

// Dir 返回暂存目录
func (l *LocalStaging) Dir() string {
	return l.dir
}

// Stage 写入一个带随机前缀的暂存文件，避免并发上传同名文件互相覆盖
func (l *LocalStaging) Stage(_ context.Context, fileName string, reader io.Reader, size int64) (*StagedFile, error) {
	safe := SecureFilename(fileName)
	if safe == "" {
		safe = "upload.pdf"
	}
	path := filepath.Join(l.dir, uuid.NewString()+"_"+safe)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("创建暂存文件失败: %w", err)
	}
	written, err := io.Copy(f, reader)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("写入暂存文件失败: %w", err)
	}
	if size > 0 && written != size {
		_ = os.Remove(path)
		return nil, fmt.Errorf("暂存文件大小不一致: 期望 %d, 实际 %d", size, written)
	}

	return &StagedFile{
		OriginalName: fileName,
		SafeName:     safe,
		LocalPath:    path,
		Size:         written,
	}, nil
}

// Open 打开暂存文件，调用方负责关闭
func (l *LocalStaging) Open(_ context.Context, file *StagedFile) (io.ReadCloser, error) {
	if file == nil || file.LocalPath == "" {
		return nil, fmt.Errorf("暂存文件路径不能为空")
	}
	return os.Open(file.LocalPath)
}

// Remove 删除暂存文件，文件已不存在时不报错
func (l *LocalStaging) Remove(_ context.Context, file *StagedFile) error {
	if file == nil || file.LocalPath == "" {
		return nil
	}
	if err := os.Remove(file.LocalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除暂存文件失败: %w", err)
	}
	return nil
}
