package solver

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Global registry for loaded solver proto descriptors.
var (
	protoRegistry      = make(map[string]*desc.FileDescriptor)
	protoRegistryMutex sync.RWMutex
)

// LoadProto parses a .proto file describing a solver service and registers
// its descriptors for NewRemote lookups.
func LoadProto(path string, importPaths ...string) error {
	parser := protoparse.Parser{}
	if len(importPaths) == 0 {
		importPaths = []string{"."}
	}
	parser.ImportPaths = importPaths

	fds, err := parser.ParseFiles(path)
	if err != nil {
		return fmt.Errorf("failed to parse proto: %w", err)
	}

	protoRegistryMutex.Lock()
	defer protoRegistryMutex.Unlock()
	for _, fd := range fds {
		protoRegistry[fd.GetName()] = fd
	}
	return nil
}

func findMethodDescriptor(path string) (*desc.MethodDescriptor, error) {
	serviceName, methodName, ok := splitMethodPath(path)
	if !ok {
		return nil, fmt.Errorf("invalid method path %q, expected 'package.Service/Method'", path)
	}

	protoRegistryMutex.RLock()
	defer protoRegistryMutex.RUnlock()
	for _, fd := range protoRegistry {
		if svc := fd.FindService(serviceName); svc != nil {
			if method := svc.FindMethodByName(methodName); method != nil {
				return method, nil
			}
		}
	}
	return nil, fmt.Errorf("method %q not found (did you load the proto?)", path)
}

func splitMethodPath(path string) (service, method string, ok bool) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i], path[i+1:], true
		}
	}
	return "", "", false
}

// Remote submits cone programs to a solver service over gRPC using dynamic
// messages, so no generated stubs are required: the service's request fields
// are matched by name and unknown fields are left at their defaults.
type Remote struct {
	conn   *grpc.ClientConn
	method *desc.MethodDescriptor
}

// NewRemote connects to target and resolves methodPath (for example
// "cvx.ConeSolver/Solve") against the loaded descriptors.
func NewRemote(target, methodPath string) (*Remote, error) {
	method, err := findMethodDescriptor(methodPath)
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Remote{conn: conn, method: method}, nil
}

// Close tears down the underlying connection.
func (r *Remote) Close() error {
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	return err
}

// Solve marshals p into the service's request message, invokes the unary
// method, and decodes the response into a Result.
func (r *Remote) Solve(ctx context.Context, p *ConeProgram) (*Result, error) {
	if r.conn == nil {
		return nil, fmt.Errorf("remote solver is closed")
	}

	reqMsg := dynamic.NewMessage(r.method.GetInputType())
	if err := populateRequest(reqMsg, p); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	respMsg := dynamic.NewMessage(r.method.GetOutputType())

	methodPath := "/" + r.method.GetService().GetFullyQualifiedName() + "/" + r.method.GetName()
	if err := r.conn.Invoke(ctx, methodPath, reqMsg, respMsg); err != nil {
		return nil, fmt.Errorf("RPC failed: %w", err)
	}
	return decodeResult(respMsg)
}

// populateRequest sets the request fields the service declares; fields the
// service does not know about are skipped.
func populateRequest(msg *dynamic.Message, p *ConeProgram) error {
	aRows := make([]int64, len(p.A))
	aCols := make([]int64, len(p.A))
	aVals := make([]float64, len(p.A))
	for i, e := range p.A {
		aRows[i] = int64(e.Row)
		aCols[i] = int64(e.Col)
		aVals[i] = e.Val
	}
	coneKinds := make([]string, len(p.Cones))
	coneDims := make([]int64, len(p.Cones))
	coneSides := make([]int64, len(p.Cones))
	for i, c := range p.Cones {
		coneKinds[i] = c.Kind
		coneDims[i] = int64(c.Dim)
		coneSides[i] = int64(c.Side)
	}

	fields := []struct {
		name string
		val  any
	}{
		{"id", p.ID.String()},
		{"num_vars", int64(p.NumVars)},
		{"objective", p.Objective},
		{"objective_offset", p.ObjectiveOffset},
		{"a_rows", aRows},
		{"a_cols", aCols},
		{"a_vals", aVals},
		{"offset", p.Offset},
		{"cone_kinds", coneKinds},
		{"cone_dims", coneDims},
		{"cone_sides", coneSides},
		{"integers", intsTo64(p.Integers)},
		{"binaries", intsTo64(p.Binaries)},
	}
	for _, f := range fields {
		if err := setField(msg, f.name, f.val); err != nil {
			return fmt.Errorf("field %s: %w", f.name, err)
		}
	}
	return nil
}

func intsTo64(xs []int) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}

func setField(msg *dynamic.Message, name string, val any) error {
	fd := msg.GetMessageDescriptor().FindFieldByName(name)
	if fd == nil {
		return nil
	}
	if fd.IsRepeated() {
		var slice []interface{}
		switch v := val.(type) {
		case []float64:
			for _, x := range v {
				slice = append(slice, convertScalar(x, fd))
			}
		case []int64:
			for _, x := range v {
				slice = append(slice, convertScalar(x, fd))
			}
		case []string:
			for _, x := range v {
				slice = append(slice, x)
			}
		default:
			return fmt.Errorf("unsupported repeated value %T", val)
		}
		if slice == nil {
			slice = []interface{}{}
		}
		msg.SetField(fd, slice)
		return nil
	}
	msg.SetField(fd, convertScalar(val, fd))
	return nil
}

// convertScalar coerces a Go value to the field's wire type.
func convertScalar(val any, fd *desc.FieldDescriptor) interface{} {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		switch v := val.(type) {
		case int64:
			return int32(v)
		case float64:
			return int32(v)
		}
	case descriptorpb.FieldDescriptorProto_TYPE_INT64, descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		switch v := val.(type) {
		case int64:
			return v
		case float64:
			return int64(v)
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32, descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		if v, ok := val.(int64); ok {
			return uint32(v)
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64, descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		if v, ok := val.(int64); ok {
			return uint64(v)
		}
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		switch v := val.(type) {
		case float64:
			return float32(v)
		case int64:
			return float32(v)
		}
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		switch v := val.(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		if v, ok := val.(string); ok {
			return v
		}
	}
	return val
}

func decodeResult(msg *dynamic.Message) (*Result, error) {
	res := &Result{Status: StatusUnknown}

	if fd := msg.GetMessageDescriptor().FindFieldByName("status"); fd != nil {
		switch v := msg.GetField(fd).(type) {
		case string:
			res.Status = ParseStatus(v)
		case int32:
			res.Status = Status(v)
		case int64:
			res.Status = Status(v)
		}
	}
	if fd := msg.GetMessageDescriptor().FindFieldByName("objective"); fd != nil {
		switch v := msg.GetField(fd).(type) {
		case float64:
			res.Objective = v
		case float32:
			res.Objective = float64(v)
		}
	}
	if fd := msg.GetMessageDescriptor().FindFieldByName("x"); fd != nil {
		slice, ok := msg.GetField(fd).([]interface{})
		if !ok {
			return nil, fmt.Errorf("solver response field x is not repeated")
		}
		res.X = make([]float64, 0, len(slice))
		for _, item := range slice {
			switch v := item.(type) {
			case float64:
				res.X = append(res.X, v)
			case float32:
				res.X = append(res.X, float64(v))
			default:
				return nil, fmt.Errorf("solver response x holds %T", item)
			}
		}
	}
	return res, nil
}
