package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"gundetect/internal/training"
)

func main() {
	var opts training.Options
	flag.StringVar(&opts.Data, "data", "", "Path to the dataset YAML (required)")
	flag.StringVar(&opts.Model, "model", "yolo11n.pt", "Base model weights")
	flag.IntVar(&opts.Epochs, "epochs", 10, "Number of training epochs")
	flag.IntVar(&opts.ImgSize, "imgsz", 640, "Training image size")
	flag.StringVar(&opts.Device, "device", "0", "Device to train on, e.g. 0, 0,1 or cpu")
	flag.StringVar(&opts.Project, "project", "runs/detect", "Output project directory")
	flag.StringVar(&opts.Name, "name", "gun", "Run name inside the project directory")
	flag.BoolVar(&opts.Export, "export", true, "Export the best weights to ONNX for the server")
	binary := flag.String("yolo", training.DefaultBinary, "Ultralytics CLI executable")
	flag.Parse()

	if opts.Data == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	trainer := &training.Trainer{Binary: *binary, Stdout: os.Stdout, Stderr: os.Stderr}
	artifact, err := trainer.Run(ctx, opts)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	fmt.Printf("Model written to %s\n", artifact)
	if opts.Export {
		fmt.Printf("Start the server with MODEL_PATH=%s\n", artifact)
	}
}
