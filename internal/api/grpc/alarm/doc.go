// Package alarm implements the gRPC control API of the alarm clock daemon.
//
// The service is described by a hand-written grpc.ServiceDesc whose messages
// are protobuf well-known types, so no code generation step is needed.
// Domain errors cross the wire as status codes carrying an ErrorInfo detail
// and are restored to their sentinels on the client side.
package alarm
