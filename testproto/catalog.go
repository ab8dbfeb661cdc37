package testproto

import (
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// CatalogService is the fully qualified name of the service in Catalog.
const CatalogService = Package + ".CatalogService"

// Catalog returns a small but representative service definition:
//
//	GetOrder      get    /v1/users/{user_id}/orders/{order.id}
//	CreateItem    post   /v1/items                       body "*"
//	UpdateAddress patch  /v1/users/{user_id}/address     body "address"
//	SetTags       put    /v1/items/{name}/tags           body "tags"
//	GetShelf      get    /v1/{name=shelves/*}            + HEAD and POST :lookup bindings
//	WalkTree      custom TRACE /v1/nodes/{root.value}
//	Ping          no http annotation
//	Watch         server streaming, get /v1/watch
//
// Node is self referencing and declares its fields out of field number
// order; Item carries an enum, a repeated message and a map.
func Catalog() *descriptorpb.FileDescriptorProto {
	msgs := []*descriptorpb.DescriptorProto{
		Message("OrderRef", String("id", 1)),
		Message("GetOrderRequest",
			String("user_id", 1),
			MessageField("order", 2, Ref("OrderRef")),
		),
		Message("Order",
			String("id", 1),
			String("user_id", 2),
			Repeated(MessageField("items", 3, Ref("Item"))),
		),
		WithMap(Message("Item",
			String("name", 1),
			Scalar("price_cents", 2, descriptorpb.FieldDescriptorProto_TYPE_INT64),
			EnumField("state", 3, Ref("State")),
			Repeated(String("tags", 4)),
			Scalar("weight", 5, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
			Scalar("in_stock", 6, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
		), "labels", 7, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
		Message("CreateItemRequest", String("name", 1)),
		Message("Address", String("street", 1), String("city", 2)),
		Message("UpdateAddressRequest",
			String("user_id", 1),
			MessageField("address", 2, Ref("Address")),
		),
		Message("SetTagsRequest",
			String("name", 1),
			Repeated(String("tags", 2)),
		),
		Message("GetShelfRequest", String("name", 1)),
		Message("Shelf", String("name", 1), String("theme", 2)),
		Message("Node",
			String("value", 2),
			Repeated(MessageField("children", 1, Ref("Node"))),
			MessageField("parent", 3, Ref("Node")),
		),
		Message("WalkTreeRequest", MessageField("root", 1, Ref("Node"))),
		Message("Empty"),
	}

	svc := &descriptorpb.ServiceDescriptorProto{
		Name: proto.String("CatalogService"),
		Method: []*descriptorpb.MethodDescriptorProto{
			Method("GetOrder", Ref("GetOrderRequest"), Ref("Order"), &annotations.HttpRule{
				Pattern: &annotations.HttpRule_Get{Get: "/v1/users/{user_id}/orders/{order.id}"},
			}),
			Method("CreateItem", Ref("CreateItemRequest"), Ref("Item"), &annotations.HttpRule{
				Pattern: &annotations.HttpRule_Post{Post: "/v1/items"},
				Body:    "*",
			}),
			Method("UpdateAddress", Ref("UpdateAddressRequest"), Ref("Address"), &annotations.HttpRule{
				Pattern: &annotations.HttpRule_Patch{Patch: "/v1/users/{user_id}/address"},
				Body:    "address",
			}),
			Method("SetTags", Ref("SetTagsRequest"), Ref("Item"), &annotations.HttpRule{
				Pattern: &annotations.HttpRule_Put{Put: "/v1/items/{name}/tags"},
				Body:    "tags",
			}),
			Method("GetShelf", Ref("GetShelfRequest"), Ref("Shelf"), &annotations.HttpRule{
				Pattern: &annotations.HttpRule_Get{Get: "/v1/{name=shelves/*}"},
				AdditionalBindings: []*annotations.HttpRule{
					{
						Pattern: &annotations.HttpRule_Custom{
							Custom: &annotations.CustomHttpPattern{Kind: "HEAD", Path: "/v1/{name=shelves/*}"},
						},
					},
					{
						Pattern: &annotations.HttpRule_Post{Post: "/v1/shelves:lookup"},
						Body:    "*",
					},
				},
			}),
			Method("WalkTree", Ref("WalkTreeRequest"), Ref("Node"), &annotations.HttpRule{
				Pattern: &annotations.HttpRule_Custom{
					Custom: &annotations.CustomHttpPattern{Kind: "TRACE", Path: "/v1/nodes/{root.value}"},
				},
			}),
			Method("Ping", Ref("Empty"), Ref("Empty"), nil),
		},
	}

	watch := Method("Watch", Ref("Empty"), Ref("Item"), &annotations.HttpRule{
		Pattern: &annotations.HttpRule_Get{Get: "/v1/watch"},
	})
	watch.ServerStreaming = proto.Bool(true)
	svc.Method = append(svc.Method, watch)

	f := File("catalog.proto", msgs, svc)
	f.EnumType = []*descriptorpb.EnumDescriptorProto{
		{
			Name: proto.String("State"),
			Value: []*descriptorpb.EnumValueDescriptorProto{
				{Name: proto.String("STATE_UNSPECIFIED"), Number: proto.Int32(0)},
				{Name: proto.String("AVAILABLE"), Number: proto.Int32(1)},
				{Name: proto.String("RETIRED"), Number: proto.Int32(2)},
			},
		},
	}
	return f
}
