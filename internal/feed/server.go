package feed

import (
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName     = "efis.v1.InstrumentFeed"
	subscribeMethod = "/" + ServiceName + "/Subscribe"
)

// FeedServer is the server side of the instrument feed service.
type FeedServer interface {
	Subscribe(*emptypb.Empty, grpc.ServerStream) error
}

func subscribeHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(FeedServer).Subscribe(m, stream)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FeedServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "efis/v1/feed.proto",
}

// Register installs the feed service on s.
func Register(s *grpc.Server, srv FeedServer) {
	s.RegisterService(&serviceDesc, srv)
}

// Hub fans published updates out to every subscribed stream. It keeps the
// latest message per slot so a new subscriber starts from the full picture
// instead of waiting for every parameter to be re-pushed.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan *structpb.Struct]struct{}
	latest map[string]*structpb.Struct
	order  []string // slots, least recently published first
	log    logrus.FieldLogger
}

var _ FeedServer = (*Hub)(nil)

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		subs:   make(map[chan *structpb.Struct]struct{}),
		latest: make(map[string]*structpb.Struct),
		log:    log,
	}
}

// slot names the piece of state a message overwrites: the type, refined by
// line, instrument, preference key or the single field of a partial update.
func slot(u *structpb.Struct) string {
	f := u.GetFields()
	typ := f["type"].GetStringValue()
	switch typ {
	case TypeMessage:
		return fmt.Sprintf("%s/%v", typ, f["line"].GetNumberValue())
	case TypeServiceability:
		return typ + "/" + f["instrument"].GetStringValue()
	case TypePref:
		return typ + "/" + f["key"].GetStringValue()
	case TypeAttitude, TypeWaypoint, TypeDisplay:
		if len(f) == 2 {
			for k := range f {
				if k != "type" {
					return typ + "/" + k
				}
			}
		}
	}
	return typ
}

// Publish sends u to every subscriber. A subscriber whose buffer is full
// misses the message; the next value for that parameter supersedes it.
func (h *Hub) Publish(u *structpb.Struct) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := slot(u)
	if _, ok := h.latest[key]; ok {
		h.order = slices.DeleteFunc(h.order, func(k string) bool { return k == key })
	}
	h.order = append(h.order, key)
	h.latest[key] = u

	for ch := range h.subs {
		select {
		case ch <- u:
		default:
			h.log.WithField("type", key).Debug("Subscriber slow, dropping update")
		}
	}
}

// Subscribers returns the number of attached streams.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) attach() (chan *structpb.Struct, []*structpb.Struct) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan *structpb.Struct, 256)
	h.subs[ch] = struct{}{}

	replay := make([]*structpb.Struct, 0, len(h.order))
	for _, k := range h.order {
		replay = append(replay, proto.Clone(h.latest[k]).(*structpb.Struct))
	}
	return ch, replay
}

func (h *Hub) detach(ch chan *structpb.Struct) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Subscribe streams the current picture and then every published update
// until the client goes away.
func (h *Hub) Subscribe(_ *emptypb.Empty, stream grpc.ServerStream) error {
	ch, replay := h.attach()
	defer h.detach(ch)

	h.log.Info("Feed subscriber attached")
	defer h.log.Info("Feed subscriber detached")

	for _, u := range replay {
		if err := stream.SendMsg(u); err != nil {
			return err
		}
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-ch:
			if err := stream.SendMsg(u); err != nil {
				return err
			}
		}
	}
}
