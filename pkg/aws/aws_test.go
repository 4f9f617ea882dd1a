package aws

import (
	"context"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	logtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	calls  int
	values map[string]string
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	v, ok := f.values[*in.SecretId]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: sdkaws.String(v)}, nil
}

func TestSecretsClient_CachesValues(t *testing.T) {
	api := &fakeSecrets{values: map[string]string{"checkout/STRIPE_SECRET_API_KEY": "sk_test_123"}}
	client := newSecretsClient(api)

	for i := 0; i < 3; i++ {
		v, err := client.GetSecret(context.Background(), "checkout/STRIPE_SECRET_API_KEY")
		require.NoError(t, err)
		assert.Equal(t, "sk_test_123", v)
	}
	assert.Equal(t, 1, api.calls)

	_, err := client.GetSecret(context.Background(), "missing")
	assert.Error(t, err)
}

type fakeSNS struct {
	inputs []*sns.PublishInput
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{}, nil
}

func TestSNSClient_Publish(t *testing.T) {
	api := &fakeSNS{}
	client := &SNSClient{client: api}

	require.NoError(t, client.Publish(context.Background(), "arn:aws:sns:us-east-1:000000000000:checkout-events", "payment_intent_created", []byte(`{"type":"payment_intent_created"}`)))
	require.Len(t, api.inputs, 1)
	assert.Equal(t, `{"type":"payment_intent_created"}`, *api.inputs[0].Message)
	assert.Equal(t, "payment_intent_created", *api.inputs[0].MessageAttributes["event_type"].StringValue)

	require.NoError(t, client.Publish(context.Background(), "arn:aws:sns:us-east-1:000000000000:checkout-events", "", []byte(`{}`)))
	assert.Empty(t, api.inputs[1].MessageAttributes)

	assert.Error(t, client.Publish(context.Background(), "", "payment_intent_created", []byte("{}")))
	assert.Len(t, api.inputs, 2)
}

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetricsClient_RecordCount(t *testing.T) {
	api := &fakeCloudWatch{}
	m := &MetricsClient{client: api, namespace: "Checkout", enabled: true}

	require.NoError(t, m.RecordCount(context.Background(), MetricPaymentIntentsCreated, map[string]string{"Currency": "usd"}))
	require.Len(t, api.inputs, 1)
	datum := api.inputs[0].MetricData[0]
	assert.Equal(t, MetricPaymentIntentsCreated, *datum.MetricName)
	assert.Equal(t, types.StandardUnitCount, datum.Unit)
	assert.Equal(t, "Checkout", *api.inputs[0].Namespace)
}

func TestMetricsClient_DisabledAndNil(t *testing.T) {
	api := &fakeCloudWatch{}
	m := &MetricsClient{client: api, enabled: false}
	require.NoError(t, m.RecordCount(context.Background(), MetricHTTPRequests, nil))
	assert.Empty(t, api.inputs)

	var nilClient *MetricsClient
	assert.False(t, nilClient.IsEnabled())
	assert.NoError(t, nilClient.RecordCount(context.Background(), MetricHTTPRequests, nil))
}

type fakeLogs struct {
	groupErr error
	events   []logtypes.InputLogEvent
}

func (f *fakeLogs) CreateLogGroup(context.Context, *cloudwatchlogs.CreateLogGroupInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	return &cloudwatchlogs.CreateLogGroupOutput{}, f.groupErr
}

func (f *fakeLogs) CreateLogStream(context.Context, *cloudwatchlogs.CreateLogStreamInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	return &cloudwatchlogs.CreateLogStreamOutput{}, nil
}

func (f *fakeLogs) PutLogEvents(_ context.Context, in *cloudwatchlogs.PutLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	f.events = append(f.events, in.LogEvents...)
	return &cloudwatchlogs.PutLogEventsOutput{}, nil
}

func TestCloudWatchLogsWriter(t *testing.T) {
	api := &fakeLogs{groupErr: &logtypes.ResourceAlreadyExistsException{}}
	w := &CloudWatchLogsWriter{client: api, logGroupName: "/checkout", logStreamName: "checkout-1"}

	require.NoError(t, w.ensureStream(context.Background()))

	n, err := w.Write([]byte(`{"msg":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	require.Len(t, api.events, 1)
	assert.Equal(t, `{"msg":"hello"}`, *api.events[0].Message)
}

func TestCloudWatchLogsWriter_GroupFailure(t *testing.T) {
	api := &fakeLogs{groupErr: errors.New("AccessDenied")}
	w := &CloudWatchLogsWriter{client: api, logGroupName: "/checkout", logStreamName: "checkout-1"}

	assert.Error(t, w.ensureStream(context.Background()))
}
