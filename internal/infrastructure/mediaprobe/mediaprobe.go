// Package mediaprobe 通过 ffprobe 子进程读取媒体文件的时长。
package mediaprobe

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet 暴露媒体探测的依赖注入入口。
var ProviderSet = wire.NewSet(NewFFProbe)

// Config 控制 ffprobe 调用方式。
type Config struct {
	BinPath string
	Timeout time.Duration
}

// FFProbe 调用外部 ffprobe 可执行文件提取容器时长。
type FFProbe struct {
	bin     string
	timeout time.Duration
	log     *log.Helper
}

// NewFFProbe 创建探测器，未配置时使用 PATH 中的 ffprobe。
func NewFFProbe(cfg Config, logger log.Logger) *FFProbe {
	bin := cfg.BinPath
	if bin == "" {
		bin = "ffprobe"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &FFProbe{
		bin:     bin,
		timeout: timeout,
		log:     log.NewHelper(log.With(logger, "component", "mediaprobe")),
	}
}

// Probe 返回媒体文件的播放时长。文件损坏或格式不可识别时返回错误。
func (p *FFProbe) Probe(ctx context.Context, path string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return 0, fmt.Errorf("ffprobe %q: %s", path, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return 0, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	raw := strings.TrimSpace(string(out))
	seconds, parseErr := strconv.ParseFloat(raw, 64)
	if parseErr != nil || seconds < 0 {
		return 0, fmt.Errorf("ffprobe %q: unparsable duration %q", path, raw)
	}

	duration := time.Duration(seconds * float64(time.Second))
	p.log.WithContext(ctx).Debugf("probed media: path=%s duration=%s", path, duration)
	return duration, nil
}
