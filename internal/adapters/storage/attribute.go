package storage

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"product-inventory-api/internal/models"
)

// Numbers cross this boundary as json.Number <-> N so values like prices are
// never rounded through float64 on their way to or from DynamoDB.

func marshalItem(item models.Item) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(item))
	for name, value := range item {
		av, err := marshalValue(value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = av
	}
	return out, nil
}

func marshalValue(v interface{}) (types.AttributeValue, error) {
	switch val := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case string:
		return &types.AttributeValueMemberS{Value: val}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: val}, nil
	case json.Number:
		return &types.AttributeValueMemberN{Value: val.String()}, nil
	case []byte:
		return &types.AttributeValueMemberB{Value: val}, nil
	case models.Item:
		m, err := marshalItem(val)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case map[string]interface{}:
		m, err := marshalItem(models.Item(val))
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case []interface{}:
		list := make([]types.AttributeValue, 0, len(val))
		for i, elem := range val {
			av, err := marshalValue(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			list = append(list, av)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	default:
		return attributevalue.Marshal(val)
	}
}

func unmarshalItem(m map[string]types.AttributeValue) (models.Item, error) {
	item := make(models.Item, len(m))
	for name, av := range m {
		value, err := unmarshalValue(av)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		item[name] = value
	}
	return item, nil
}

func unmarshalValue(av types.AttributeValue) (interface{}, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value, nil
	case *types.AttributeValueMemberN:
		return json.Number(v.Value), nil
	case *types.AttributeValueMemberBOOL:
		return v.Value, nil
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberB:
		return v.Value, nil
	case *types.AttributeValueMemberM:
		m, err := unmarshalItem(v.Value)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}(m), nil
	case *types.AttributeValueMemberL:
		list := make([]interface{}, 0, len(v.Value))
		for _, elem := range v.Value {
			value, err := unmarshalValue(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		return list, nil
	case *types.AttributeValueMemberSS:
		list := make([]interface{}, 0, len(v.Value))
		for _, s := range v.Value {
			list = append(list, s)
		}
		return list, nil
	case *types.AttributeValueMemberNS:
		list := make([]interface{}, 0, len(v.Value))
		for _, n := range v.Value {
			list = append(list, json.Number(n))
		}
		return list, nil
	case *types.AttributeValueMemberBS:
		list := make([]interface{}, 0, len(v.Value))
		for _, b := range v.Value {
			list = append(list, b)
		}
		return list, nil
	default:
		var out interface{}
		if err := attributevalue.Unmarshal(av, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}
