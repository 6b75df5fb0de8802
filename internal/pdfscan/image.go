package pdfscan

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/tsawler/tabula/core"
)

// errUnsupportedImage marks image XObjects whose pixel layout cannot be
// turned into a PNG.
var errUnsupportedImage = errors.New("unsupported image")

// resolver follows indirect references. *reader.Reader satisfies it.
type resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// imageXObject is an /Image entry of a page's XObject resources. Nothing is
// decoded until its bytes are requested. err is set when the entry could not
// be resolved, so the image still takes its ordinal and fails on read.
type imageXObject struct {
	stream *core.Stream
	err    error
}

// pageImages lists the image XObjects in a page's resource dictionary.
// Entries that fail to resolve are kept with their error.
func pageImages(r resolver, resources core.Dict) (map[string]imageXObject, error) {
	out := make(map[string]imageXObject)
	obj := resources.Get("XObject")
	if obj == nil {
		return out, nil
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("resolve XObject dictionary: %w", err)
	}
	xobjects, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("XObject resource is %T, not a dictionary", resolved)
	}

	for name, entry := range xobjects {
		obj, err := r.Resolve(entry)
		if err != nil {
			out[name] = imageXObject{err: fmt.Errorf("resolve XObject %s: %w", name, err)}
			continue
		}
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		if subtype, _ := stream.Dict.GetName("Subtype"); subtype != "Image" {
			continue
		}
		out[name] = imageXObject{stream: stream}
	}
	return out, nil
}

// encodeImage returns the image bytes and their file extension. JPEG and
// JPEG 2000 data is passed through; raw samples are re-encoded as PNG.
func encodeImage(r resolver, stream *core.Stream) ([]byte, string, error) {
	data, err := stream.Decode()
	if err != nil {
		return nil, "", fmt.Errorf("decode image stream: %w", err)
	}

	switch lastFilter(stream.Dict) {
	case "DCTDecode", "DCT":
		return data, "jpeg", nil
	case "JPXDecode":
		return data, "jpx", nil
	}

	img, err := rasterize(r, stream.Dict, data)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), "png", nil
}

// lastFilter names the outermost encoding of a stream, which tabula leaves
// undecoded for DCT and JPX.
func lastFilter(dict core.Dict) string {
	switch f := dict.Get("Filter").(type) {
	case core.Name:
		return string(f)
	case core.Array:
		if len(f) > 0 {
			if name, ok := f[len(f)-1].(core.Name); ok {
				return string(name)
			}
		}
	}
	return ""
}

// rasterize builds an image from decoded samples. Gray images may use 1, 2,
// 4 or 8 bits per component; RGB and CMYK need 8.
func rasterize(r resolver, dict core.Dict, data []byte) (image.Image, error) {
	w, err := intEntry(r, dict, "Width")
	if err != nil {
		return nil, err
	}
	h, err := intEntry(r, dict, "Height")
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", errUnsupportedImage, w, h)
	}

	bpc, components := 8, 1
	if mask, _ := dict.GetBool("ImageMask"); mask {
		bpc = 1
	} else {
		if v, err := intEntry(r, dict, "BitsPerComponent"); err == nil {
			bpc = v
		}
		if components, err = colorComponents(r, dict.Get("ColorSpace")); err != nil {
			return nil, err
		}
	}

	switch {
	case components == 1 && (bpc == 1 || bpc == 2 || bpc == 4 || bpc == 8):
		return graySamples(data, w, h, bpc)
	case components == 3 && bpc == 8:
		if len(data) < w*h*3 {
			return nil, fmt.Errorf("short RGB data: got %d bytes, want %d", len(data), w*h*3)
		}
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for i := range w * h {
			copy(img.Pix[i*4:i*4+3], data[i*3:i*3+3])
			img.Pix[i*4+3] = 0xff
		}
		return img, nil
	case components == 4 && bpc == 8:
		if len(data) < w*h*4 {
			return nil, fmt.Errorf("short CMYK data: got %d bytes, want %d", len(data), w*h*4)
		}
		img := image.NewCMYK(image.Rect(0, 0, w, h))
		copy(img.Pix, data[:w*h*4])
		return img, nil
	}
	return nil, fmt.Errorf("%w: %d components at %d bits", errUnsupportedImage, components, bpc)
}

// graySamples unpacks rows of bpc-bit samples (each row padded to a byte)
// and scales them to 8 bits.
func graySamples(data []byte, w, h, bpc int) (*image.Gray, error) {
	stride := (w*bpc + 7) / 8
	if len(data) < stride*h {
		return nil, fmt.Errorf("short gray data: got %d bytes, want %d", len(data), stride*h)
	}
	maxVal := 1<<bpc - 1
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		row := data[y*stride : (y+1)*stride]
		for x := range w {
			bit := x * bpc
			v := int(row[bit/8]>>(8-bpc-bit%8)) & maxVal
			img.Pix[y*img.Stride+x] = uint8(v * 255 / maxVal)
		}
	}
	return img, nil
}

// colorComponents reports the number of colour components of a colour space.
// Indexed and other palette-based spaces are not supported.
func colorComponents(r resolver, cs core.Object) (int, error) {
	if cs == nil {
		return 0, fmt.Errorf("%w: missing ColorSpace", errUnsupportedImage)
	}
	obj, err := r.Resolve(cs)
	if err != nil {
		return 0, fmt.Errorf("resolve ColorSpace: %w", err)
	}

	switch v := obj.(type) {
	case core.Name:
		switch v {
		case "DeviceGray", "CalGray", "G":
			return 1, nil
		case "DeviceRGB", "CalRGB", "RGB":
			return 3, nil
		case "DeviceCMYK", "CMYK":
			return 4, nil
		}
		return 0, fmt.Errorf("%w: colour space %s", errUnsupportedImage, v)
	case core.Array:
		if len(v) == 0 {
			break
		}
		family, _ := v[0].(core.Name)
		switch family {
		case "CalGray":
			return 1, nil
		case "CalRGB":
			return 3, nil
		case "ICCBased":
			if len(v) < 2 {
				break
			}
			profile, err := r.Resolve(v[1])
			if err != nil {
				return 0, fmt.Errorf("resolve ICC profile: %w", err)
			}
			if s, ok := profile.(*core.Stream); ok {
				if n, ok := s.Dict.GetInt("N"); ok {
					return int(n), nil
				}
			}
		}
		return 0, fmt.Errorf("%w: colour space %s", errUnsupportedImage, family)
	}
	return 0, fmt.Errorf("%w: colour space %T", errUnsupportedImage, obj)
}

func intEntry(r resolver, dict core.Dict, key string) (int, error) {
	obj := dict.Get(key)
	if obj == nil {
		return 0, fmt.Errorf("image missing %s", key)
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", key, err)
	}
	switch v := resolved.(type) {
	case core.Int:
		return int(v), nil
	case core.Real:
		return int(v), nil
	}
	return 0, fmt.Errorf("image %s is %T", key, resolved)
}
