package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"DestinySync/internal/interfaces"
	"DestinySync/internal/model"
	"DestinySync/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ReplayOptions replay 子命令参数
type ReplayOptions struct {
	*RootOptions
	Task    string
	File    string
	Headers []string // k=v
}

// ReplayResult replay 输出
type ReplayResult struct {
	MessageID string   `json:"message_id"`
	Task      string   `json:"task"`
	OK        bool     `json:"ok"`
	Instances []string `json:"instances"`
}

func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "用本地载荷文件执行一次同步（含实例ID回投）",
		Long: `读取载荷文件，按给定任务走一遍调度器并输出结果。

Examples:
  destinysync replay --task instance --file ./pgcr.json
  destinysync replay --task activity_history --file ./history.json --header membership=4611686018467284386 --header character=2305843009301234567`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), opts.RootOptions)
			if err != nil {
				return err
			}
			defer app.Close()
			return runReplay(cmd.Context(), opts, app.Dispatcher, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.Task, "task", "", "任务类型，如 member_profile / instance（必填）")
	cmd.Flags().StringVar(&opts.File, "file", "", "载荷 JSON 文件路径，- 表示标准输入（必填）")
	cmd.Flags().StringArrayVar(&opts.Headers, "header", nil, "消息头 k=v，可重复")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, handler interfaces.Handler, out io.Writer) error {
	task, err := service.ParseTask(opts.Task)
	if err != nil {
		return err
	}
	headers, err := parseHeaders(opts.Headers)
	if err != nil {
		return err
	}
	data, err := readPayload(opts.File)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("%s 不是合法的 JSON", opts.File)
	}

	msg := model.Message{ID: uuid.NewString(), Task: task.String(), Data: data, Headers: headers}
	ok, ids := handler.Handle(ctx, msg)
	res := ReplayResult{MessageID: msg.ID, Task: msg.Task, OK: ok, Instances: make([]string, 0, len(ids))}
	for _, id := range ids {
		res.Instances = append(res.Instances, strconv.FormatInt(id, 10))
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("任务 %s 处理失败", msg.Task)
	}
	return nil
}

func parseHeaders(pairs []string) (map[string]string, error) {
	headers := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, found := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !found || k == "" {
			return nil, fmt.Errorf("无效的消息头 %q，应为 k=v", p)
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers, nil
}

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
