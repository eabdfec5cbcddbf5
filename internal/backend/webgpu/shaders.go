package webgpu

// WGSL kernel bodies, one per program name.
//
// The generator prepends every shader parameter as a `p_`-prefixed constant and every
// bound tensor as a `t_<role>` storage buffer, so the bodies below read their
// configuration from names like p_total_shape_out or p_width_shape_origin. All tensors
// are addressed in canonical [n, c, h, w] order.

// workgroupSize is the default number of threads per workgroup.
const workgroupSize = 256

// commonFunctions is shared by every kernel.
const commonFunctions = `
fn coords(i: i32, c: i32, h: i32, w: i32) -> vec4<i32> {
    let x = i % w;
    let y = (i / w) % h;
    let ch = (i / (w * h)) % c;
    let n = i / (w * h * c);
    return vec4<i32>(n, ch, y, x);
}
`

// copyKernel moves elements unchanged: reshapes only change the addressing metadata.
const copyKernel = `
    t_out[i] = t_origin[i];
`

// activationKernel applies activate() element-wise.
const activationKernel = `
    t_out[i] = activate(t_origin[i]);
`

// elementwiseKernel combines origin with a right-aligned broadcast of counter.
// OPERATOR is replaced by the arithmetic operator.
const elementwiseKernel = `
    let o = coords(i, p_channel_out, p_height_shape_out, p_width_shape_out);
    let cb = p_total_shape_counter / (p_channel_counter * p_height_shape_counter * p_width_shape_counter);
    let n = select(o.x, 0, cb == 1);
    let ch = select(o.y, 0, p_channel_counter == 1);
    let y = select(o.z, 0, p_height_shape_counter == 1);
    let x = select(o.w, 0, p_width_shape_counter == 1);
    let j = ((n * p_channel_counter + ch) * p_height_shape_counter + y) * p_width_shape_counter + x;
    t_out[i] = activate(t_origin[i] OPERATOR t_counter[j]);
`

// transposeKernel applies the inverse permutation perm_0..perm_3 to output coordinates.
const transposeKernel = `
    var oc = coords(i, p_channel_out, p_height_shape_out, p_width_shape_out);
    var inv = vec4<i32>(p_perm_0, p_perm_1, p_perm_2, p_perm_3);
    var ic = vec4<i32>(0, 0, 0, 0);
    let offset = 4 - p_perm_size;
    for (var a = 0; a < p_perm_size; a = a + 1) {
        ic[offset + a] = oc[offset + inv[a]];
    }
    let j = ((ic.x * p_channel_origin + ic.y) * p_height_shape_origin + ic.z) * p_width_shape_origin + ic.w;
    t_out[i] = t_origin[j];
`

// conv2dKernel is a direct grouped convolution; depthwise is the groups == channels case.
// Filter: [out_channels, in_channels / groups, kh, kw].
const conv2dKernel = `
    let o = coords(i, p_channel_out, p_height_shape_out, p_width_shape_out);
    let in_per_group = p_channel_filter;
    let out_per_group = p_channel_out / p_groups;
    let g = o.y / out_per_group;
    var sum = t_bias[o.y];
    for (var icl = 0; icl < in_per_group; icl = icl + 1) {
        let ic = g * in_per_group + icl;
        for (var ky = 0; ky < p_height_shape_filter; ky = ky + 1) {
            let iy = o.z * p_strides[0] - p_paddings[0] + ky * p_dilations[0];
            if (iy < 0 || iy >= p_height_shape_origin) {
                continue;
            }
            for (var kx = 0; kx < p_width_shape_filter; kx = kx + 1) {
                let ix = o.w * p_strides[1] - p_paddings[1] + kx * p_dilations[1];
                if (ix < 0 || ix >= p_width_shape_origin) {
                    continue;
                }
                let src = ((o.x * p_channel_origin + ic) * p_height_shape_origin + iy) * p_width_shape_origin + ix;
                let k = ((o.y * in_per_group + icl) * p_height_shape_filter + ky) * p_width_shape_filter + kx;
                sum = sum + t_origin[src] * t_filter[k];
            }
        }
    }
RESIDUAL
    t_out[i] = activate(sum);
`

// residualAdd adds a per-channel counter for fused convolution + elementwise add.
const residualAdd = `    sum = sum + t_counter[o.y % p_total_shape_counter];`

// pool2dKernel implements average and max pooling; REDUCE selects the variant.
const pool2dKernel = `
    let o = coords(i, p_channel_out, p_height_shape_out, p_width_shape_out);
    var acc = INIT;
    var count = 0;
    for (var ky = 0; ky < p_ksize[0]; ky = ky + 1) {
        let iy = o.z * p_strides[0] - p_paddings[0] + ky;
        if (iy < 0 || iy >= p_height_shape_origin) {
            continue;
        }
        for (var kx = 0; kx < p_ksize[1]; kx = kx + 1) {
            let ix = o.w * p_strides[1] - p_paddings[1] + kx;
            if (ix < 0 || ix >= p_width_shape_origin) {
                continue;
            }
            let v = t_origin[((o.x * p_channel_origin + o.y) * p_height_shape_origin + iy) * p_width_shape_origin + ix];
            REDUCE
            count = count + 1;
        }
    }
    FINISH
`

// Activation function bodies keyed by active_function. "" is the program default.
var activations = map[string]string{
	"identity":  `return v;`,
	"relu":      `return max(v, 0.0);`,
	"leakyRelu": `return select(v * p_multi_value, v, v > 0.0);`,
	"prelu":     `return select(v * p_multi_value, v, v > 0.0);`,
	"relu6":     `return clamp(v, 0.0, p_multi_value);`,
}
