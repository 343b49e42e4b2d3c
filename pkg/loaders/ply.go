package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
)

// PLYStats describes what a loaded PLY file contained
type PLYStats struct {
	Format    string // "ascii", "binary_little_endian" or "binary_big_endian"
	Positions int    // Vertex elements
	Faces     int    // Face elements (polygons before triangulation)
	Triangles int    // Triangles kept after triangulation
	Vertices  int    // Distinct (position, uv, normal) vertices in the mesh
	Normals   bool   // Vertices carried nx, ny and nz
	UVs       bool   // Vertices carried texture coordinates
}

// plyProperty is a property line of the header. Lists have a count type
// and an item type; scalars only a type.
type plyProperty struct {
	Name      string
	Type      string
	IsList    bool
	CountType string
}

// plyElement is an element line of the header and the properties under it
type plyElement struct {
	Name       string
	Count      int
	Properties []plyProperty
}

type plyHeader struct {
	Format   string
	Elements []plyElement
}

// plyValues reads the scalars of one element item after another
type plyValues interface {
	begin() error
	scalar(typ string) (float64, error)
}

// LoadPLY loads a Stanford PLY file as a mesh
func LoadPLY(filename string, transform Transform) (*geometry.Mesh, PLYStats, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, PLYStats{}, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	mesh, stats, err := ParsePLY(file, transform)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return mesh, stats, nil
}

// ParsePLY reads the vertex and face elements of an ASCII or binary PLY
// stream; other elements are skipped. Vertices need x, y and z and may carry
// nx, ny, nz and u, v (or s, t). Faces are read from their vertex_indices
// list and triangulated as fans around their first corner. Texture v is
// flipped as in ParseOBJ.
func ParsePLY(r io.Reader, transform Transform) (*geometry.Mesh, PLYStats, error) {
	br := bufio.NewReaderSize(r, 1024*1024)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, PLYStats{}, fmt.Errorf("failed to parse PLY header: %w", err)
	}
	stats := PLYStats{Format: header.Format}

	var values plyValues
	switch header.Format {
	case "ascii":
		values = &asciiValues{r: br}
	case "binary_little_endian":
		values = &binaryValues{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValues{r: br, order: binary.BigEndian}
	default:
		return nil, stats, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}

	var (
		vertices []geometry.MeshVertex
		faces    [][]int
	)
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			layout, err := newVertexLayout(element)
			if err != nil {
				return nil, stats, err
			}
			stats.Normals, stats.UVs = layout.hasNormal, layout.hasUV
			vertices = make([]geometry.MeshVertex, 0, element.Count)
			for i := 0; i < element.Count; i++ {
				v, err := layout.read(values, transform)
				if err != nil {
					return nil, stats, fmt.Errorf("vertex %d: %w", i, err)
				}
				vertices = append(vertices, v)
			}
		case "face":
			faces = make([][]int, 0, element.Count)
			for i := 0; i < element.Count; i++ {
				face, err := readFace(values, element)
				if err != nil {
					return nil, stats, fmt.Errorf("face %d: %w", i, err)
				}
				faces = append(faces, face)
			}
		default:
			for i := 0; i < element.Count; i++ {
				if err := skipItem(values, element); err != nil {
					return nil, stats, fmt.Errorf("%s %d: %w", element.Name, i, err)
				}
			}
		}
	}
	stats.Positions = len(vertices)
	stats.Faces = len(faces)

	b := geometry.NewMeshBuilder()
	for i, face := range faces {
		if len(face) < 3 {
			return nil, stats, fmt.Errorf("face %d needs at least 3 corners, got %d", i, len(face))
		}
		for _, index := range face {
			if index < 0 || index >= len(vertices) {
				return nil, stats, fmt.Errorf("face %d: index %d out of range (%d vertices)", i, index, len(vertices))
			}
		}
		for j := 1; j+1 < len(face); j++ {
			if b.AddTriangle(vertices[face[0]], vertices[face[j]], vertices[face[j+1]]) {
				stats.Triangles++
			}
		}
	}
	mesh := b.Build()
	stats.Vertices = b.VertexCount()
	return mesh, stats, nil
}

// parsePLYHeader reads up to and including the end_header line
func parsePLYHeader(r *bufio.Reader) (*plyHeader, error) {
	header := &plyHeader{}
	first := true
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("missing end_header")
			}
			return nil, err
		}
		parts := strings.Fields(line)
		if first {
			if len(parts) != 1 || parts[0] != "ply" {
				return nil, errors.New("not a PLY file")
			}
			first = false
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line %q", strings.TrimSpace(line))
			}
			header.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, plyElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, errors.New("property before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			element := &header.Elements[len(header.Elements)-1]
			element.Properties = append(element.Properties, prop)
		case "end_header":
			if header.Format == "" {
				return nil, errors.New("missing format line")
			}
			return header, nil
		default:
			// comment, obj_info
		}
	}
}

func parsePLYProperty(parts []string) (plyProperty, error) {
	var prop plyProperty
	if len(parts) > 0 && parts[0] == "list" {
		if len(parts) < 4 {
			return prop, errors.New("invalid list property definition")
		}
		prop = plyProperty{Name: parts[3], Type: parts[2], IsList: true, CountType: parts[1]}
		if plyTypeSize(prop.CountType) == 0 {
			return prop, fmt.Errorf("unsupported data type: %s", prop.CountType)
		}
	} else {
		if len(parts) < 2 {
			return prop, errors.New("invalid property definition")
		}
		prop = plyProperty{Name: parts[1], Type: parts[0]}
	}
	if plyTypeSize(prop.Type) == 0 {
		return prop, fmt.Errorf("unsupported data type: %s", prop.Type)
	}
	return prop, nil
}

// plyTypeSize returns the size in bytes of a PLY scalar type, 0 if unknown
func plyTypeSize(typ string) int {
	switch typ {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

// vertexLayout maps vertex property positions to mesh vertex fields; -1
// means absent
type vertexLayout struct {
	element   plyElement
	position  [3]int
	normal    [3]int
	uv        [2]int
	hasNormal bool
	hasUV     bool
}

func newVertexLayout(element plyElement) (*vertexLayout, error) {
	l := &vertexLayout{
		element:  element,
		position: [3]int{-1, -1, -1},
		normal:   [3]int{-1, -1, -1},
		uv:       [2]int{-1, -1},
	}
	for i, prop := range element.Properties {
		if prop.IsList {
			continue
		}
		switch prop.Name {
		case "x":
			l.position[0] = i
		case "y":
			l.position[1] = i
		case "z":
			l.position[2] = i
		case "nx":
			l.normal[0] = i
		case "ny":
			l.normal[1] = i
		case "nz":
			l.normal[2] = i
		case "u", "s", "texture_u":
			l.uv[0] = i
		case "v", "t", "texture_v":
			l.uv[1] = i
		}
	}
	for _, i := range l.position {
		if i < 0 {
			return nil, errors.New("vertex element needs x, y and z properties")
		}
	}
	l.hasNormal = l.normal[0] >= 0 && l.normal[1] >= 0 && l.normal[2] >= 0
	l.hasUV = l.uv[0] >= 0 && l.uv[1] >= 0
	return l, nil
}

func (l *vertexLayout) read(values plyValues, transform Transform) (geometry.MeshVertex, error) {
	if err := values.begin(); err != nil {
		return geometry.MeshVertex{}, err
	}
	scalars := make([]float64, len(l.element.Properties))
	for i, prop := range l.element.Properties {
		if prop.IsList {
			if err := skipList(values, prop); err != nil {
				return geometry.MeshVertex{}, err
			}
			continue
		}
		v, err := values.scalar(prop.Type)
		if err != nil {
			return geometry.MeshVertex{}, err
		}
		scalars[i] = v
	}

	p := core.NewVec3(scalars[l.position[0]], scalars[l.position[1]], scalars[l.position[2]])
	vertex := geometry.MeshVertex{Position: transform.apply(p)}
	if l.hasNormal {
		n := core.NewVec3(scalars[l.normal[0]], scalars[l.normal[1]], scalars[l.normal[2]])
		if n.Length() > 0 {
			vertex.Normal = n.Normalize()
		}
	}
	if l.hasUV {
		vertex.UV = core.NewVec2(scalars[l.uv[0]], 1-scalars[l.uv[1]])
	}
	return vertex, nil
}

// readFace returns the vertex_indices (or vertex_index) list of one face
func readFace(values plyValues, element plyElement) ([]int, error) {
	if err := values.begin(); err != nil {
		return nil, err
	}
	var face []int
	found := false
	for _, prop := range element.Properties {
		if !prop.IsList || found || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
			if err := skipProperty(values, prop); err != nil {
				return nil, err
			}
			continue
		}
		found = true
		count, err := listCount(values, prop)
		if err != nil {
			return nil, err
		}
		face = make([]int, count)
		for i := range face {
			v, err := values.scalar(prop.Type)
			if err != nil {
				return nil, err
			}
			face[i] = int(v)
		}
	}
	if !found {
		return nil, errors.New("face element has no vertex_indices list")
	}
	return face, nil
}

func skipItem(values plyValues, element plyElement) error {
	if err := values.begin(); err != nil {
		return err
	}
	for _, prop := range element.Properties {
		if err := skipProperty(values, prop); err != nil {
			return err
		}
	}
	return nil
}

func skipProperty(values plyValues, prop plyProperty) error {
	if prop.IsList {
		return skipList(values, prop)
	}
	_, err := values.scalar(prop.Type)
	return err
}

func skipList(values plyValues, prop plyProperty) error {
	count, err := listCount(values, prop)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if _, err := values.scalar(prop.Type); err != nil {
			return err
		}
	}
	return nil
}

func listCount(values plyValues, prop plyProperty) (int, error) {
	v, err := values.scalar(prop.CountType)
	if err != nil {
		return 0, err
	}
	if v < 0 || v != math.Trunc(v) {
		return 0, fmt.Errorf("invalid %s list length %v", prop.Name, v)
	}
	return int(v), nil
}

// asciiValues reads one element item per line
type asciiValues struct {
	r      *bufio.Reader
	fields []string
}

func (a *asciiValues) begin() error {
	for {
		line, err := a.r.ReadString('\n')
		a.fields = strings.Fields(line)
		if len(a.fields) > 0 {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
}

func (a *asciiValues) scalar(typ string) (float64, error) {
	if len(a.fields) == 0 {
		return 0, errors.New("line ended early")
	}
	field := a.fields[0]
	a.fields = a.fields[1:]
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", typ, field)
	}
	return v, nil
}

// binaryValues reads packed scalars in the file's byte order
type binaryValues struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValues) begin() error { return nil }

func (b *binaryValues) scalar(typ string) (float64, error) {
	buf := b.buf[:plyTypeSize(typ)]
	if _, err := io.ReadFull(b.r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, err
	}
	switch typ {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default:
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}
