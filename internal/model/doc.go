// Package model scores sensor readings with a pretrained reconstruction model.
//
// # Contract
//
// The package owns three read-only collaborators, each built once at startup
// and shared across concurrent pipeline invocations without locking:
//
//  1. MinMaxScaler maps a raw SensorReading into the model's training range.
//  2. Autoencoder reconstructs a NormalizedVector through dense layers.
//  3. Scorer computes the reconstruction error (mean squared difference
//     between the vector and its reconstruction).
//
// Training and fitting happen elsewhere. This package only evaluates persisted
// artifacts, which are referenced by URI and resolved by an ArtifactStore:
//
//	/var/lib/cranewatch/model.yaml      local file
//	file:///var/lib/cranewatch/model.yaml
//	s3://models/crane/autoencoder.yaml  object storage (minio-compatible)
//
// # Artifact formats
//
// Autoencoder (YAML or JSON):
//
//	input_dim: 7
//	layers:
//	  - kernel: [[...], ...]   # input_dim x units, Keras Dense layout
//	    bias: [...]            # units
//	    activation: relu       # linear | relu | sigmoid | tanh
//
// MinMaxScaler (YAML or JSON), same semantics as scikit-learn's MinMaxScaler:
//
//	data_min: [...]
//	data_max: [...]
//	feature_range: [0, 1]
//
// # Errors
//
// Load and inference failures wrap types.ErrModelUnavailable. A vector of the
// wrong length yields a *types.ShapeError.
package model
