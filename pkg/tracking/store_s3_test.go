package tracking

import "testing"

func TestS3OptionsParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{uri: "s3://experiments", wantBucket: "experiments"},
		{uri: "s3://experiments/mlruns", wantBucket: "experiments", wantPrefix: "mlruns"},
		{uri: "s3://experiments/team/mlruns/", wantBucket: "experiments", wantPrefix: "team/mlruns"},
		{uri: "s3://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			options := &S3Options{}
			err := options.ParseURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseURI(%q) expected error", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURI(%q) err = %v", tt.uri, err)
			}
			if options.Bucket != tt.wantBucket {
				t.Errorf("Bucket = %v, want %v", options.Bucket, tt.wantBucket)
			}
			if options.Prefix != tt.wantPrefix {
				t.Errorf("Prefix = %v, want %v", options.Prefix, tt.wantPrefix)
			}
		})
	}
}
