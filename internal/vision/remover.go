package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"
)

// ImageNet normalization applied after max-scaling, matching the U2-Net
// reference preprocessing.
var (
	segMean = [3]float32{0.485, 0.456, 0.406}
	segStd  = [3]float32{0.229, 0.224, 0.225}
)

const (
	segWidth  = 320
	segHeight = 320

	// ProcessedSuffix names the RGBA cutout written next to the input file.
	ProcessedSuffix = "_processed.png"
)

// Remover runs U2-Net ONNX inference to cut the foreground garment out of an
// uploaded photo.
type Remover struct {
	mu sync.Mutex

	modelPath string
	libPath   string

	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	inited  bool
}

// NewRemover creates a remover that will lazily load the ONNX model.
func NewRemover(modelPath, onnxLibPath string) *Remover {
	return &Remover{
		modelPath: modelPath,
		libPath:   onnxLibPath,
	}
}

// initOnce loads the ONNX shared library, environment, and session.
func (r *Remover) initOnce() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inited {
		return nil
	}

	if r.libPath != "" {
		ort.SetSharedLibraryPath(r.libPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnx init environment: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(r.modelPath)
	if err != nil {
		return fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("onnx model has no inputs or outputs")
	}

	inputTensor, err := ort.NewEmptyTensor[float32](inputs[0].Dimensions)
	if err != nil {
		return fmt.Errorf("onnx new input tensor: %w", err)
	}
	r.input = inputTensor

	outputTensor, err := ort.NewEmptyTensor[float32](outputs[0].Dimensions)
	if err != nil {
		inputTensor.Destroy()
		return fmt.Errorf("onnx new output tensor: %w", err)
	}
	r.output = outputTensor

	inputNames := make([]string, len(inputs))
	for i := range inputs {
		inputNames[i] = inputs[i].Name
	}
	outputNames := make([]string, len(outputs))
	for i := range outputs {
		outputNames[i] = outputs[i].Name
	}

	session, err := ort.NewAdvancedSession(r.modelPath, inputNames, outputNames,
		[]ort.Value{r.input}, []ort.Value{r.output}, nil)
	if err != nil {
		outputTensor.Destroy()
		inputTensor.Destroy()
		return fmt.Errorf("onnx new session: %w", err)
	}
	r.session = session
	r.inited = true
	return nil
}

// Remove reads the image at path, segments the foreground, and writes an RGBA
// PNG cutout to a sibling path with the processed suffix. The input file is
// left in place.
func (r *Remover) Remove(path string) (string, error) {
	if err := r.initOnce(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	img, err := decodeImage(data)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	inputData := preprocessSegment(img)

	r.mu.Lock()
	inData := r.input.GetData()
	if len(inData) < len(inputData) {
		r.mu.Unlock()
		return "", fmt.Errorf("input tensor size %d < preprocessed %d", len(inData), len(inputData))
	}
	copy(inData, inputData)
	err = r.session.Run()
	if err != nil {
		r.mu.Unlock()
		return "", fmt.Errorf("onnx run: %w", err)
	}
	mask := make([]float32, segWidth*segHeight)
	copy(mask, r.output.GetData())
	r.mu.Unlock()

	normalizeMask(mask)
	cutout := applyMask(img, mask)

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ProcessedSuffix
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create cutout file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, cutout); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("encode cutout png: %w", err)
	}
	return outPath, nil
}

// preprocessSegment resizes img to 320x320 and converts to NCHW float32,
// scaled by the max channel value and ImageNet-normalized.
func preprocessSegment(img image.Image) []float32 {
	dst := image.NewRGBA(image.Rect(0, 0, segWidth, segHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	maxVal := float32(1)
	for y := 0; y < segHeight; y++ {
		for x := 0; x < segWidth; x++ {
			c := dst.RGBAAt(x, y)
			for _, v := range [3]uint8{c.R, c.G, c.B} {
				if f := float32(v); f > maxVal {
					maxVal = f
				}
			}
		}
	}

	out := make([]float32, 1*3*segHeight*segWidth)
	const size = segWidth * segHeight
	for y := 0; y < segHeight; y++ {
		for x := 0; x < segWidth; x++ {
			idx := y*segWidth + x
			c := dst.RGBAAt(x, y)
			r, g, b := float32(c.R)/maxVal, float32(c.G)/maxVal, float32(c.B)/maxVal
			out[0*size+idx] = (r - segMean[0]) / segStd[0]
			out[1*size+idx] = (g - segMean[1]) / segStd[1]
			out[2*size+idx] = (b - segMean[2]) / segStd[2]
		}
	}
	return out
}

// normalizeMask rescales predictions to [0,1] in place.
func normalizeMask(mask []float32) {
	if len(mask) == 0 {
		return
	}
	minV, maxV := mask[0], mask[0]
	for _, v := range mask {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	span := maxV - minV
	if span == 0 {
		span = 1
	}
	for i, v := range mask {
		mask[i] = (v - minV) / span
	}
}

// applyMask upscales the 320x320 mask to the source size and uses it as the
// alpha channel of the result.
func applyMask(img image.Image, mask []float32) *image.NRGBA {
	maskImg := image.NewGray(image.Rect(0, 0, segWidth, segHeight))
	for y := 0; y < segHeight; y++ {
		for x := 0; x < segWidth; x++ {
			maskImg.SetGray(x, y, color.Gray{Y: uint8(mask[y*segWidth+x] * 255)})
		}
	}

	bounds := img.Bounds()
	scaled := image.NewGray(bounds)
	draw.CatmullRom.Scale(scaled, bounds, maskImg, maskImg.Bounds(), draw.Over, nil)

	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: scaled.GrayAt(x, y).Y,
			})
		}
	}
	return out
}
