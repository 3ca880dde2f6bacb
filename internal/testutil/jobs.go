package testutil

// ResourceHCL declares two machines with four GPUs each.
const ResourceHCL = `
machine "node0" {
  addr        = "10.0.0.1"
  device_type = "gpu"
  devices     = 4
}

machine "node1" {
  addr        = "10.0.0.2"
  device_type = "gpu"
  devices     = 4
}
`

// PipelineJobHCL is a three-stage job spanning both machines of ResourceHCL.
const PipelineJobHCL = ResourceHCL + `
job "pipeline" {}

op "data" {
  type = "input"
}

op "conv" {
  type      = "conv2d"
  inputs    = [op.data]
  trainable = true
}

op "fc" {
  type      = "dense"
  inputs    = [op.conv]
  trainable = true
}

op "loss" {
  type   = "softmax_xent"
  inputs = [op.fc]
}

placement "input" {
  ops     = [op.data]
  devices = ["node0.gpu[0]"]
}

placement "conv" {
  ops     = [op.conv]
  devices = formatlist("node0.gpu[%d]", range(machine.node0.devices))
  reduce  = "tree"
}

placement "head" {
  ops     = [op.fc, op.loss]
  devices = ["node1.gpu"]
  policy  = "model"
}
`

// FourReplicaJobHCL places one trainable op on four devices.
const FourReplicaJobHCL = ResourceHCL + `
op "fc" {
  type      = "dense"
  trainable = true
}

placement "fc" {
  ops     = [op.fc]
  devices = ["node0.gpu"]
}
`

// ZeroReplicaJobHCL places a trainable op on no devices.
const ZeroReplicaJobHCL = ResourceHCL + `
op "fc" {
  type      = "dense"
  trainable = true
}

placement "fc" {
  ops     = [op.fc]
  devices = []
}
`
