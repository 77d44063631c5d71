package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	cfgpkg "emolabel/internal/config"
	"emolabel/internal/diag"
	"emolabel/pkg/contract"
	"emolabel/pkg/dataset"
)

// 退出码
const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
	exitConfig  = 3
)

const usage = `用法: emolabel [全局旗标] <子命令> [旗标]

子命令:
  pack  -texts F -emotions F -queries F -out P [-text-export] [-sheet-export]
  dump  -in P [-out BASE] [-sheet]
  show  -in P

全局旗标:
  --config       配置文件（.json/.yaml/.yml）；缺省读取 ./config.json（若存在）
  --log-level    日志级别 debug|info|warn|error（覆盖配置）
  --status       终端提示（stdout），默认开启
  --init-config  在指定目录生成 config.json 与 .env 模板后退出；不带值时为当前目录
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	start := time.Now()
	corrID := uuid.NewString()
	// 在任何 ENV 读取前加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")

	gfs := flag.NewFlagSet("emolabel", flag.ContinueOnError)
	gfs.SetOutput(stderr)
	gfs.Usage = func() { fprintf(stderr, "%s", usage) }
	var (
		flagConfig   string
		flagLogLevel string
		flagInitDir  string
		flagStatus   bool
	)
	gfs.StringVar(&flagConfig, "config", "", "配置文件路径（JSON/YAML）")
	gfs.StringVar(&flagLogLevel, "log-level", "", "日志级别（覆盖配置）")
	gfs.StringVar(&flagInitDir, "init-config", "", "生成默认配置模板的目录")
	gfs.BoolVar(&flagStatus, "status", true, "终端提示（stdout）")
	if err := gfs.Parse(normalizeInitArg(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	// --init-config: 生成模板并退出
	if dir := strings.TrimSpace(flagInitDir); dir != "" {
		if err := initConfig(dir); err != nil {
			fprintf(stderr, "生成默认配置失败: %v\n", err)
			return exitConfig
		}
		return exitOK
	}

	rest := gfs.Args()
	if len(rest) == 0 {
		gfs.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		fprintf(stderr, "配置解析失败: %v\n", err)
		return exitConfig
	}
	// CLI 覆盖
	var overCLI cfgpkg.Config
	overCLI.Logging.Level = flagLogLevel
	gfs.Visit(func(f *flag.Flag) {
		if f.Name == "status" {
			v := flagStatus
			overCLI.Status = &v
		}
	})
	cfg = cfgpkg.Merge(cfg, overCLI)
	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(stderr, "配置校验失败: %v\n", err)
		_ = dumpConfig(stderr, cfg)
		return exitConfig
	}

	logger := diag.NewLogger(corrID, cfg.Logging.Level, cfg.Logging.Dir)
	defer logger.Close()
	term := diag.NewTerminal(stdout, cfg.StatusEnabled())
	st, err := cfgpkg.Assemble(cfg, logger, term)
	if err != nil {
		fprintf(stderr, "装配失败: %v\n", err)
		logger.Error("cli", string(diag.Classify(err)), "assemble", &start)
		return exitConfig
	}
	logger.DebugStart("config", "effective", "", map[string]string{
		"reader": cfg.Components.Reader,
		"writer": cfg.Components.Writer,
		"codec":  cfg.Components.Codec,
		"text":   cfg.Components.Text,
		"sheet":  cfg.Components.Sheet,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t := logger.Start("cli", rest[0])
	var code int
	switch rest[0] {
	case "pack":
		code = runPack(ctx, st, rest[1:], stderr)
	case "dump":
		code = runDump(ctx, st, rest[1:], stderr)
	case "show":
		code = runShow(ctx, st, rest[1:], stdout, stderr)
	default:
		fprintf(stderr, "未知子命令: %s\n", rest[0])
		gfs.Usage()
		return exitUsage
	}

	if code == exitOK {
		t.Finish(rest[0], 0)
		diag.IncOp("cli", rest[0], "success")
		diag.ObserveDuration("cli", rest[0], time.Since(start).Milliseconds())
	} else {
		logger.Error("cli", string(diag.CodeUnknown), rest[0]+": exit "+strconv.Itoa(code), t.Since())
		diag.IncOp("cli", rest[0], "error")
	}
	if diag.ParseLevel(cfg.Logging.Level) == diag.Debug {
		for _, m := range diag.Snapshot() {
			fprintf(stderr, "%s %d\n", m.Name, m.Value)
		}
	}
	return code
}

// runPack: 读取三份平行行文件，生成快照及可选伴随导出。
func runPack(ctx context.Context, st *dataset.Store, args []string, stderr io.Writer) int {
	fs := subFlags("pack", stderr)
	var texts, emotions, queries, out string
	var textExport, sheetExport bool
	fs.StringVar(&texts, "texts", "", "文本行文件（- 表示 STDIN）")
	fs.StringVar(&emotions, "emotions", "", "情绪名行文件")
	fs.StringVar(&queries, "queries", "", "查询行文件")
	fs.StringVar(&out, "out", "", "快照输出路径")
	fs.BoolVar(&textExport, "text-export", false, "同时写出 <base>-with-emotions.txt")
	fs.BoolVar(&sheetExport, "sheet-export", false, "同时写出 <base>-with-emotions.xlsx")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if missing := firstMissing(map[string]string{"texts": texts, "emotions": emotions, "queries": queries, "out": out}); missing != "" {
		fprintf(stderr, "pack: 缺少 -%s\n", missing)
		return exitUsage
	}
	if countDash(texts, emotions, queries) > 1 {
		fprintf(stderr, "pack: STDIN（-）只能用于一个输入\n")
		return exitUsage
	}

	var cols [3][]string
	for i, p := range []string{texts, emotions, queries} {
		lines, err := st.LoadLines(ctx, p)
		if err != nil {
			return exitRuntime
		}
		cols[i] = lines
	}
	rs, err := st.SaveLabeledRecords(ctx, cols[0], cols[1], cols[2], out)
	if err != nil {
		fprintf(stderr, "pack: %v\n", err)
		return exitRuntime
	}
	base := trimExt(out)
	if textExport {
		if _, err := st.SaveLabeledRecordsAsText(ctx, rs, base); err != nil {
			return exitRuntime
		}
	}
	if sheetExport {
		if _, err := st.SaveLabeledRecordsAsSheet(ctx, rs, base); err != nil {
			return exitRuntime
		}
	}
	return exitOK
}

// runDump: 加载快照并写出文本伴随导出。
func runDump(ctx context.Context, st *dataset.Store, args []string, stderr io.Writer) int {
	fs := subFlags("dump", stderr)
	var in, out string
	var sheet bool
	fs.StringVar(&in, "in", "", "快照路径")
	fs.StringVar(&out, "out", "", "导出基础路径（默认与快照同名去扩展名）")
	fs.BoolVar(&sheet, "sheet", false, "同时导出 xlsx")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if strings.TrimSpace(in) == "" {
		fprintf(stderr, "dump: 缺少 -in\n")
		return exitUsage
	}
	rs, err := st.LoadTable(ctx, in)
	if err != nil {
		if !errors.Is(err, contract.ErrTableNotFound) {
			fprintf(stderr, "dump: %v\n", err)
		}
		return exitRuntime
	}
	if strings.TrimSpace(out) == "" {
		out = trimExt(in)
	}
	if _, err := st.SaveLabeledRecordsAsText(ctx, rs, out); err != nil {
		return exitRuntime
	}
	if sheet {
		if _, err := st.SaveLabeledRecordsAsSheet(ctx, rs, out); err != nil {
			return exitRuntime
		}
	}
	return exitOK
}

// runShow: 加载快照并以表格形式打印。
func runShow(ctx context.Context, st *dataset.Store, args []string, stdout, stderr io.Writer) int {
	fs := subFlags("show", stderr)
	var in string
	fs.StringVar(&in, "in", "", "快照路径")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if strings.TrimSpace(in) == "" {
		fprintf(stderr, "show: 缺少 -in\n")
		return exitUsage
	}
	rs, err := st.LoadTable(ctx, in)
	if err != nil {
		if !errors.Is(err, contract.ErrTableNotFound) {
			fprintf(stderr, "show: %v\n", err)
		}
		return exitRuntime
	}
	if err := printTable(stdout, rs); err != nil {
		fprintf(stderr, "show: %v\n", err)
		return exitRuntime
	}
	return exitOK
}

// printTable 按固定列序逐列取值，对齐输出。
func printTable(w io.Writer, rs contract.RecordSet) error {
	names := contract.Columns()
	cols := make([][]string, len(names))
	for j, name := range names {
		c, ok := rs.Column(name)
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}
		cols[j] = c
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(names, "\t"))
	cells := make([]string, len(names))
	for i := 0; i < rs.Len(); i++ {
		for j := range cols {
			cells[j] = oneLine(cols[j][i])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func oneLine(s string) string {
	return strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(s)
}

func subFlags(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// firstMissing 按固定顺序返回第一个为空的旗标名。
func firstMissing(m map[string]string) string {
	for _, k := range []string{"texts", "emotions", "queries", "in", "out"} {
		if v, ok := m[k]; ok && strings.TrimSpace(v) == "" {
			return k
		}
	}
	return ""
}

func countDash(ss ...string) int {
	n := 0
	for _, s := range ss {
		if strings.TrimSpace(s) == "-" {
			n++
		}
	}
	return n
}

// trimExt 去掉最后一个扩展名，作为伴随导出的基础路径。
func trimExt(p string) string {
	if ext := filepath.Ext(p); ext != "" && ext != p {
		return strings.TrimSuffix(p, ext)
	}
	return p
}

// loadConfig: 默认值 → 文件/ENV JSON → ENV 覆盖。
func loadConfig(path string) (cfgpkg.Config, error) {
	cfg := cfgpkg.Defaults()
	if path == "" {
		path = os.Getenv(cfgpkg.EnvPrefix + "CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	switch {
	case path != "":
		base, err := cfgpkg.LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = cfgpkg.Merge(cfg, base)
	case os.Getenv(cfgpkg.EnvPrefix+"CONFIG_JSON") != "":
		base, err := cfgpkg.LoadJSON("", []byte(os.Getenv(cfgpkg.EnvPrefix+"CONFIG_JSON")))
		if err != nil {
			return cfg, err
		}
		cfg = cfgpkg.Merge(cfg, base)
	}
	over, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return cfg, err
	}
	return cfgpkg.Merge(cfg, over), nil
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func dumpConfig(w io.Writer, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	fprintf(w, "有效配置:\n%s\n", b)
	return nil
}

// initConfig 在 dir 下生成 config.json 与 .env（均不覆盖已存在文件）。
func initConfig(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeConfig(filepath.Join(dir, "config.json"), cfgpkg.DefaultTemplateConfig()); err != nil {
		return err
	}
	return writeDotEnv(filepath.Join(dir, ".env"))
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(b, '\n'))
	return err
}

// writeDotEnv 生成 .env 模板；已存在则跳过。
func writeDotEnv(path string) error {
	var b strings.Builder
	b.WriteString("# emolabel .env 模板（由 --init-config 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > 配置文件；空值表示未设置。\n\n")
	b.WriteString("# 配置来源（二选一）\n")
	for _, k := range []string{"CONFIG_FILE", "CONFIG_JSON"} {
		b.WriteString(cfgpkg.EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# 日志与提示\n")
	for _, k := range []string{"LOG_LEVEL", "LOG_DIR", "STATUS"} {
		b.WriteString(cfgpkg.EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# 组件选择与选项（原样 JSON）\n")
	for _, n := range []string{"READER", "WRITER", "CODEC", "TEXT", "SHEET"} {
		b.WriteString(cfgpkg.EnvPrefix + "COMPONENTS_" + n + "=\n")
		b.WriteString(cfgpkg.EnvPrefix + "OPTIONS_" + n + "_JSON=\n")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.WriteString(b.String())
	return err
}

// loadDotEnv 读取简单的 .env 文件并注入进程环境。
// 跳过空行与 # 注释；支持 "export " 前缀与成对引号；不覆盖已存在的环境变量。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := unquote(strings.TrimSpace(line[eq+1:]))
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}

func unquote(val string) string {
	if len(val) < 2 {
		return val
	}
	q := val[0]
	if (q != '\'' && q != '"') || val[len(val)-1] != q {
		return val
	}
	val = val[1 : len(val)-1]
	if q == '"' {
		val = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r", `\"`, `"`, `\\`, `\`).Replace(val)
	}
	return val
}

// normalizeInitArg: --init-config 未给值（位于末尾或后接开关）时补默认 "."。
func normalizeInitArg(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for i, a := range args {
		out = append(out, a)
		if a != "--init-config" && a != "-init-config" {
			continue
		}
		if i == len(args)-1 || strings.HasPrefix(args[i+1], "-") {
			out = append(out, ".")
		}
	}
	return out
}
