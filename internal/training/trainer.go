package training

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
)

// DefaultBinary is the Ultralytics command line entry point.
const DefaultBinary = "yolo"

// Options describe one training run. Zero values fall back to the defaults
// the gun model was trained with.
type Options struct {
	Data    string // dataset YAML
	Model   string
	Epochs  int
	ImgSize int
	Device  string
	Project string
	Name    string
	Export  bool // export best weights to ONNX after training
}

func (o Options) withDefaults() Options {
	if o.Model == "" {
		o.Model = "yolo11n.pt"
	}
	if o.Epochs <= 0 {
		o.Epochs = 10
	}
	if o.ImgSize <= 0 {
		o.ImgSize = 640
	}
	if o.Device == "" {
		o.Device = "0"
	}
	if o.Project == "" {
		o.Project = filepath.Join("runs", "detect")
	}
	if o.Name == "" {
		o.Name = "gun"
	}
	return o
}

// TrainArgs returns the CLI arguments for a training run.
func (o Options) TrainArgs() []string {
	o = o.withDefaults()
	return []string{
		"detect", "train",
		"data=" + o.Data,
		"model=" + o.Model,
		"epochs=" + strconv.Itoa(o.Epochs),
		"imgsz=" + strconv.Itoa(o.ImgSize),
		"device=" + o.Device,
		"project=" + o.Project,
		"name=" + o.Name,
		"exist_ok=True",
	}
}

// BestWeights is where the training run leaves its best checkpoint.
func (o Options) BestWeights() string {
	o = o.withDefaults()
	return filepath.Join(o.Project, o.Name, "weights", "best.pt")
}

// ExportArgs returns the CLI arguments that convert the best checkpoint to ONNX.
func (o Options) ExportArgs() []string {
	o = o.withDefaults()
	return []string{
		"export",
		"model=" + o.BestWeights(),
		"format=onnx",
		"imgsz=" + strconv.Itoa(o.ImgSize),
	}
}

// Trainer runs the external training tool.
type Trainer struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer
}

// Run trains a model and, when requested, exports it. It returns the path of
// the produced artifact: best.onnx after export, best.pt otherwise.
func (t *Trainer) Run(ctx context.Context, opts Options) (string, error) {
	if opts.Data == "" {
		return "", errors.New("dataset path is required")
	}

	if err := t.exec(ctx, opts.TrainArgs()); err != nil {
		return "", fmt.Errorf("training failed: %w", err)
	}

	weights := opts.BestWeights()
	if !opts.Export {
		return weights, nil
	}

	if err := t.exec(ctx, opts.ExportArgs()); err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	return weights[:len(weights)-len(filepath.Ext(weights))] + ".onnx", nil
}

func (t *Trainer) exec(ctx context.Context, args []string) error {
	binary := t.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr
	return cmd.Run()
}
