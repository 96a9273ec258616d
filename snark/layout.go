package snark

// NumAccumulatorInstances is the number of scalar field elements encoding
// the commitment-scheme accumulator carried by every composed layer. The
// accumulator is an (lhs, rhs) pair of curve points; each point's two base
// field coordinates split into 3 native-field limbs, giving 2*2*3 = 12
// elements.
const NumAccumulatorInstances = 12

// NumBundlePublicInputs is the number of application public inputs carried
// forward from the recursion circuit into the outermost bundle circuit:
//
//   - preprocessed digest
//   - recursion round
//   - (hi, lo) pre state root
//   - (hi, lo) pre batch hash
//   - (hi, lo) post state root
//   - (hi, lo) post batch hash
//   - chain id
//   - (hi, lo) post withdraw root
const NumBundlePublicInputs = 13

// NumBundleInstances is the total instance count of a bundle snark.
const NumBundleInstances = NumAccumulatorInstances + NumBundlePublicInputs
