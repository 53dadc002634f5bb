// Package imager renders preview images of top-level frames and stores them with a session.
package imager

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/kataras/figma-docgen/pkg/design"
	"github.com/kataras/figma-docgen/pkg/figma"
	"github.com/kataras/figma-docgen/pkg/formatter"
	"github.com/kataras/figma-docgen/pkg/storage"
)

// Dir is the session directory previews are stored under.
const Dir = "previews"

// Renderer renders nodes to temporary image URLs. *figma.Client implements it.
type Renderer interface {
	GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (*figma.ImagesResponse, error)
}

// ExportConfig holds configuration for preview export.
type ExportConfig struct {
	Format     string       // "png", "svg", "jpg", "pdf"; default "png"
	Scales     []float64    // e.g. [1, 2] for raster; ignored for svg/pdf
	HTTPClient *http.Client // used for downloads; default http.DefaultClient
}

// Frame is a node to render.
type Frame struct {
	NodeID string
	Name   string
}

// ExportedAsset represents a single stored preview.
type ExportedAsset struct {
	NodeID   string  `json:"nodeId"`
	NodeName string  `json:"nodeName"`
	FileName string  `json:"fileName"` // session-relative, e.g. previews/home.png
	Format   string  `json:"format"`
	Scale    float64 `json:"scale"`
	Size     int     `json:"size"`
}

// ExportResult holds the results of a preview export.
type ExportResult struct {
	Assets []ExportedAsset
	Errors []error // non-fatal per-image failures
}

const maxNodesPerRequest = 100
const maxParallelDownloads = 5

// CollectFrames returns the top-level frames and components of roots, in order.
func CollectFrames(roots []*design.Node) []Frame {
	var frames []Frame
	for _, n := range roots {
		if n == nil {
			continue
		}
		switch n.Type {
		case design.TypeFrame, design.TypeComponent, design.TypeComponentSet:
			frames = append(frames, Frame{NodeID: n.ID, Name: n.Name})
		}
	}
	return frames
}

type job struct {
	frame    Frame
	fileName string
	url      string
}

// ExportPreviews renders frames through the images API in batches, downloads the results
// concurrently and stores them as previews/<kebab-name>.<format> in the session.
// Only a failing render request is fatal; download and storage failures are collected.
func ExportPreviews(ctx context.Context, renderer Renderer, fileKey string, frames []Frame, store storage.Store, sessionID string, config ExportConfig) (*ExportResult, error) {
	if config.Format == "" {
		config.Format = "png"
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}

	result := &ExportResult{}
	if len(frames) == 0 {
		return result, nil
	}

	names := make(map[string]string, len(frames))
	nodeIDs := make([]string, 0, len(frames))
	for _, f := range frames {
		if _, ok := names[f.NodeID]; ok {
			continue
		}
		names[f.NodeID] = f.Name
		nodeIDs = append(nodeIDs, f.NodeID)
	}

	// Determine effective scales: for SVG/PDF, always use scale 1.
	scales := config.Scales
	if len(scales) == 0 || config.Format == "svg" || config.Format == "pdf" {
		scales = []float64{1}
	}

	// Base names are assigned once per node, in request order, so every scale of a node
	// shares the same name and collisions resolve the same way every run.
	usedNames := make(map[string]int)
	baseNames := make(map[string]string, len(nodeIDs))
	for _, id := range nodeIDs {
		baseNames[id] = dedupe(usedNames, baseName(names[id], id))
	}

	for _, scale := range scales {
		// Batch node IDs (max 100 per API request).
		for i := 0; i < len(nodeIDs); i += maxNodesPerRequest {
			end := min(i+maxNodesPerRequest, len(nodeIDs))
			batch := nodeIDs[i:end]

			imgResp, err := renderer.GetImages(ctx, fileKey, batch, config.Format, scale)
			if err != nil {
				return nil, fmt.Errorf("failed to get images from Figma API: %w", err)
			}
			if imgResp.Err != "" {
				return nil, fmt.Errorf("figma images API: %s", imgResp.Err)
			}

			var jobs []job
			for _, nodeID := range batch {
				imageURL, ok := imgResp.Images[nodeID]
				if !ok || imageURL == "" {
					result.Errors = append(result.Errors, fmt.Errorf("no image URL returned for node %s", nodeID))
					continue
				}
				jobs = append(jobs, job{
					frame:    Frame{NodeID: nodeID, Name: names[nodeID]},
					fileName: path.Join(Dir, buildFileName(baseNames[nodeID], nodeID, config.Format, scale)),
					url:      imageURL,
				})
			}

			// Download images concurrently with a semaphore.
			var wg sync.WaitGroup
			sem := make(chan struct{}, maxParallelDownloads)
			var mu sync.Mutex

			for _, j := range jobs {
				wg.Add(1)
				go func(j job) {
					defer wg.Done()
					sem <- struct{}{}
					defer func() { <-sem }()

					data, err := download(ctx, config.HTTPClient, j.url)
					if err == nil {
						err = store.Put(ctx, sessionID, j.fileName, data)
					}
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						result.Errors = append(result.Errors, fmt.Errorf("failed to export %s: %w", j.frame.Name, err))
						return
					}
					result.Assets = append(result.Assets, ExportedAsset{
						NodeID:   j.frame.NodeID,
						NodeName: j.frame.Name,
						FileName: j.fileName,
						Format:   config.Format,
						Scale:    scale,
						Size:     len(data),
					})
				}(j)
			}

			wg.Wait()
		}
	}

	sort.Slice(result.Assets, func(i, k int) bool {
		return result.Assets[i].FileName < result.Assets[k].FileName
	})
	return result, nil
}

// download performs an HTTP GET bound to ctx and returns the body.
func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d downloading image", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// dedupe returns name, or name with a -2, -3... suffix when it was already used.
func dedupe(used map[string]int, name string) string {
	count, exists := used[name]
	used[name] = count + 1
	if !exists {
		return name
	}
	return dedupe(used, fmt.Sprintf("%s-%d", name, count+1))
}

// baseName is the kebab-case node name, or the sanitized node ID if the name is empty.
func baseName(nodeName, nodeID string) string {
	name := formatter.ToKebabCase(nodeName)
	if name == "" {
		name = formatter.ToKebabCase(strings.ReplaceAll(nodeID, ":", "-"))
	}
	if name == "" {
		name = "frame"
	}
	return name
}

// buildFileName creates a sanitized filename from a node name.
// Uses kebab-case and adds @2x/@3x suffix for raster scales > 1.
func buildFileName(nodeName, nodeID, format string, scale float64) string {
	name := baseName(nodeName, nodeID)

	// Add scale suffix for raster formats with scale > 1.
	scaleSuffix := ""
	if scale > 1 && format != "svg" && format != "pdf" {
		scaleSuffix = fmt.Sprintf("@%gx", scale)
	}

	return fmt.Sprintf("%s%s.%s", name, scaleSuffix, format)
}
